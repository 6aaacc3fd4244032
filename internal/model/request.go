package model

import (
	"fmt"
	"strings"
)

// Severity classifies a user-facing message attached to a remote request
type Severity string

const (
	SeverityNone        Severity = "NONE"
	SeverityInformation Severity = "INFORMATION"
	SeverityWarning     Severity = "WARNING"
	SeverityError       Severity = "ERROR"
)

// ParseSeverity parses a severity tag case-insensitively.
// Empty input maps to SeverityNone.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case "", SeverityNone:
		return SeverityNone, nil
	case SeverityInformation:
		return SeverityInformation, nil
	case SeverityWarning:
		return SeverityWarning, nil
	case SeverityError:
		return SeverityError, nil
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", s)
}

// ErgoPaySigningRequest is a payment request received over ErgoPay
type ErgoPaySigningRequest struct {
	ReducedTransaction []byte   `json:"reducedTx,omitempty"`
	Message            *string  `json:"message,omitempty"`
	ReplyToURL         *string  `json:"replyTo,omitempty"`
	FixedAddress       *string  `json:"address,omitempty"`
	Severity           Severity `json:"messageSeverity"`
}

// IsComplete reports whether the request carries a transaction to sign
func (r *ErgoPaySigningRequest) IsComplete() bool {
	return r != nil && len(r.ReducedTransaction) > 0
}

// ErgoAuthRequest is an authentication request received over ErgoAuth
type ErgoAuthRequest struct {
	SigningMessage *string  `json:"signingMessage,omitempty"`
	SubjectProof   []byte   `json:"sigmaBoolean,omitempty"` // serialized sigma proposition, opaque here
	UserMessage    *string  `json:"userMessage,omitempty"`
	Severity       Severity `json:"messageSeverity"`
	ReplyToURL     *string  `json:"replyTo,omitempty"`
}

// IsComplete reports whether all mandatory fields are present
func (r *ErgoAuthRequest) IsComplete() bool {
	return r != nil &&
		len(r.SubjectProof) > 0 &&
		r.SigningMessage != nil &&
		r.ReplyToURL != nil && *r.ReplyToURL != ""
}

// ErgoAuthResponse is posted back to the ErgoAuth reply-to URL
type ErgoAuthResponse struct {
	SignedMessage string `json:"signedMessage"`
	Proof         string `json:"proof"` // hex encoded
}

// ErgoPayReply is posted back to the ErgoPay reply-to URL after submission
type ErgoPayReply struct {
	TxID string `json:"txId"`
}

// ColdSigningRequest is transported from a watch-only wallet to the signing device
type ColdSigningRequest struct {
	ReducedTransaction []byte
	SenderAddress      string
	InputBoxes         [][]byte
}

// ColdSigningResult is transported back from the signing device.
// Payload is the signed transaction or, for authentication, the proof.
type ColdSigningResult struct {
	Success         bool
	Payload         []byte
	AuxiliaryProofs [][]byte
	SubjectAddress  string
}

// SignedTransaction is produced by the external signer
type SignedTransaction struct {
	ID    string
	Bytes []byte
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}

// StrValue returns the pointed string or empty
func StrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
