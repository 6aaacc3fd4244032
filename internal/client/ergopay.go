package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// paymentJSON is the ErgoPay response body
type paymentJSON struct {
	ReducedTx       *string `json:"reducedTx"`
	Message         *string `json:"message"`
	MessageSeverity string  `json:"messageSeverity"`
	Address         *string `json:"address"`
	ReplyTo         *string `json:"replyTo"`
}

func (p *paymentJSON) toModel() (*model.ErgoPaySigningRequest, error) {
	req := &model.ErgoPaySigningRequest{
		Message:      p.Message,
		ReplyToURL:   p.ReplyTo,
		FixedAddress: p.Address,
	}
	severity, err := model.ParseSeverity(p.MessageSeverity)
	if err != nil {
		return nil, err
	}
	req.Severity = severity
	if p.ReducedTx != nil && *p.ReducedTx != "" {
		reduced, err := decodeReduced(*p.ReducedTx)
		if err != nil {
			return nil, fmt.Errorf("invalid reducedTx: %w", err)
		}
		req.ReducedTransaction = reduced
	}
	return req, nil
}

// FetchPayment resolves an ErgoPay URI. Static URIs are parsed without network access.
func (c *Client) FetchPayment(ctx context.Context, uri, address string) (*model.ErgoPaySigningRequest, error) {
	if !IsPaymentRequest(uri) {
		return nil, fmt.Errorf("not an ErgoPay request: %q", uri)
	}
	if !IsDynamicRequest(uri) {
		return ParseStaticPayment(uri)
	}

	target, err := ResolveURL(uri, address)
	if err != nil {
		return nil, err
	}

	var body paymentJSON
	if err := c.getJSON(ctx, target, &body); err != nil {
		return nil, err
	}
	req, err := body.toModel()
	if err != nil {
		return nil, err
	}

	c.log.Info("ergopay request fetched",
		zap.String("url", target),
		zap.Bool("complete", req.IsComplete()),
		zap.String("severity", string(req.Severity)),
	)
	return req, nil
}

// ParseStaticPayment parses an ErgoPay URI with the payload embedded: either a
// base64url reduced transaction or a percent-encoded JSON response body
func ParseStaticPayment(uri string) (*model.ErgoPaySigningRequest, error) {
	payload := strings.TrimSpace(staticPayload(uri))

	if decoded, err := url.PathUnescape(payload); err == nil && strings.HasPrefix(strings.TrimSpace(decoded), "{") {
		var body paymentJSON
		if err := json.Unmarshal([]byte(decoded), &body); err != nil {
			return nil, fmt.Errorf("failed to decode static request: %w", err)
		}
		return body.toModel()
	}

	reduced, err := decodeReduced(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid static ErgoPay payload: %w", err)
	}
	return &model.ErgoPaySigningRequest{
		ReducedTransaction: reduced,
		Severity:           model.SeverityNone,
	}, nil
}

// ReplyPayment notifies the dApp about the submitted transaction
func (c *Client) ReplyPayment(ctx context.Context, replyTo, txID string) error {
	return c.postJSON(ctx, replyTo, model.ErgoPayReply{TxID: txID}, nil)
}

// decodeReduced accepts base64url as specified for ErgoPay, with or without padding
func decodeReduced(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
