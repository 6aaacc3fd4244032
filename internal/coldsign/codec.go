// Package coldsign serializes cold signing requests and results to the text
// format carried by chunked QR pages.
package coldsign

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/ergo-wallet/internal/chunk"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

var (
	// ErrMalformedRequest is returned for structurally invalid request payloads
	ErrMalformedRequest = errors.New("malformed cold signing request")
	// ErrMalformedResponse is returned for structurally invalid result payloads
	ErrMalformedResponse = errors.New("malformed cold signing result")
)

type requestJSON struct {
	ReducedTx string   `json:"reducedTx"`
	Sender    string   `json:"sender"`
	Inputs    []string `json:"inputs"`
}

type resultJSON struct {
	Success bool     `json:"success"`
	Payload string   `json:"payload"`
	Proofs  []string `json:"proofs,omitempty"`
	Address string   `json:"address,omitempty"`
}

// MarshalRequest serializes req to its JSON text form
func MarshalRequest(req *model.ColdSigningRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: nil request", ErrMalformedRequest)
	}
	out := requestJSON{
		ReducedTx: base64.StdEncoding.EncodeToString(req.ReducedTransaction),
		Sender:    req.SenderAddress,
		Inputs:    make([]string, len(req.InputBoxes)),
	}
	for i, box := range req.InputBoxes {
		out.Inputs[i] = base64.StdEncoding.EncodeToString(box)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(data), nil
}

// ParseRequest parses the JSON text form of a request. It is used both for
// static single-string requests and for payloads reassembled from pages.
func ParseRequest(text string) (*model.ColdSigningRequest, error) {
	var in requestJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	reduced, err := decodeBase64(in.ReducedTx)
	if err != nil {
		return nil, fmt.Errorf("%w: reducedTx: %v", ErrMalformedRequest, err)
	}
	if len(reduced) == 0 {
		return nil, fmt.Errorf("%w: reducedTx is empty", ErrMalformedRequest)
	}

	req := &model.ColdSigningRequest{
		ReducedTransaction: reduced,
		SenderAddress:      in.Sender,
		InputBoxes:         make([][]byte, 0, len(in.Inputs)),
	}
	for i, s := range in.Inputs {
		box, err := decodeBase64(s)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrMalformedRequest, i, err)
		}
		req.InputBoxes = append(req.InputBoxes, box)
	}
	return req, nil
}

// EncodeRequest serializes req and splits it into chunks
func EncodeRequest(req *model.ColdSigningRequest, maxFragmentBytes int) ([]chunk.Chunk, error) {
	text, err := MarshalRequest(req)
	if err != nil {
		return nil, err
	}
	return chunk.Encode(text, maxFragmentBytes)
}

// DecodeRequest reassembles and parses a request from chunks
func DecodeRequest(chunks []chunk.Chunk) (*model.ColdSigningRequest, error) {
	text, err := chunk.Decode(chunks)
	if err != nil {
		return nil, err
	}
	return ParseRequest(text)
}

// MarshalResult serializes res to its JSON text form
func MarshalResult(res *model.ColdSigningResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("%w: nil result", ErrMalformedResponse)
	}
	out := resultJSON{
		Success: res.Success,
		Payload: base64.StdEncoding.EncodeToString(res.Payload),
		Address: res.SubjectAddress,
	}
	for _, p := range res.AuxiliaryProofs {
		out.Proofs = append(out.Proofs, base64.StdEncoding.EncodeToString(p))
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

// ParseResult parses the JSON text form of a result
func ParseResult(text string) (*model.ColdSigningResult, error) {
	var in resultJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	payload, err := decodeBase64(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedResponse, err)
	}

	res := &model.ColdSigningResult{
		Success:        in.Success,
		Payload:        payload,
		SubjectAddress: in.Address,
	}
	for i, s := range in.Proofs {
		p, err := decodeBase64(s)
		if err != nil {
			return nil, fmt.Errorf("%w: proof %d: %v", ErrMalformedResponse, i, err)
		}
		res.AuxiliaryProofs = append(res.AuxiliaryProofs, p)
	}
	return res, nil
}

// EncodeResult serializes res and splits it into chunks
func EncodeResult(res *model.ColdSigningResult, maxFragmentBytes int) ([]chunk.Chunk, error) {
	text, err := MarshalResult(res)
	if err != nil {
		return nil, err
	}
	return chunk.Encode(text, maxFragmentBytes)
}

// DecodeResult reassembles and parses a result from chunks
func DecodeResult(chunks []chunk.Chunk) (*model.ColdSigningResult, error) {
	text, err := chunk.Decode(chunks)
	if err != nil {
		return nil, err
	}
	return ParseResult(text)
}

// decodeBase64 accepts the standard and URL alphabets, padded or not
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
