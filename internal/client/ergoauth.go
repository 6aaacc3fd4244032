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

// authJSON is the ErgoAuth response body
type authJSON struct {
	SigmaBoolean    *string `json:"sigmaBoolean"`
	SigningMessage  *string `json:"signingMessage"`
	UserMessage     *string `json:"userMessage"`
	MessageSeverity string  `json:"messageSeverity"`
	ReplyTo         *string `json:"replyTo"`
}

func (a *authJSON) toModel() (*model.ErgoAuthRequest, error) {
	req := &model.ErgoAuthRequest{
		SigningMessage: a.SigningMessage,
		UserMessage:    a.UserMessage,
		ReplyToURL:     a.ReplyTo,
	}
	severity, err := model.ParseSeverity(a.MessageSeverity)
	if err != nil {
		return nil, err
	}
	req.Severity = severity
	if a.SigmaBoolean != nil && *a.SigmaBoolean != "" {
		proof, err := base64.StdEncoding.DecodeString(*a.SigmaBoolean)
		if err != nil {
			return nil, fmt.Errorf("invalid sigmaBoolean: %w", err)
		}
		req.SubjectProof = proof
	}
	return req, nil
}

// FetchAuth resolves an ErgoAuth URI. Mandatory fields may be absent in the
// result; callers check IsComplete.
func (c *Client) FetchAuth(ctx context.Context, uri, address string) (*model.ErgoAuthRequest, error) {
	if !IsAuthorizationRequest(uri) {
		return nil, fmt.Errorf("not an ErgoAuth request: %q", uri)
	}
	if !IsDynamicRequest(uri) {
		return ParseStaticAuth(uri)
	}

	target, err := ResolveURL(uri, address)
	if err != nil {
		return nil, err
	}

	var body authJSON
	if err := c.getJSON(ctx, target, &body); err != nil {
		return nil, err
	}
	req, err := body.toModel()
	if err != nil {
		return nil, err
	}

	c.log.Info("ergoauth request fetched",
		zap.String("url", target),
		zap.Bool("complete", req.IsComplete()),
	)
	return req, nil
}

// ParseStaticAuth parses an ErgoAuth URI carrying a percent-encoded JSON body
func ParseStaticAuth(uri string) (*model.ErgoAuthRequest, error) {
	payload, err := url.PathUnescape(strings.TrimSpace(staticPayload(uri)))
	if err != nil {
		return nil, fmt.Errorf("invalid static ErgoAuth payload: %w", err)
	}
	var body authJSON
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return nil, fmt.Errorf("failed to decode static request: %w", err)
	}
	return body.toModel()
}

// ReplyAuth posts the signed authentication response
func (c *Client) ReplyAuth(ctx context.Context, replyTo string, resp *model.ErgoAuthResponse) error {
	return c.postJSON(ctx, replyTo, resp, nil)
}
