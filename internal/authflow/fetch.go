package authflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/preview"
)

var errNoClient = errors.New("no request client configured")

type fetchResult struct {
	payment     *model.ErgoPaySigningRequest
	auth        *model.ErgoAuthRequest
	transaction *model.TransactionInfo
}

func (m *Machine) runFetch(parent context.Context, t *task, gen uint64, flow Flow, req Request) {
	defer close(t.done)

	ctx, cancel := m.withTimeout(parent, m.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	res, err := m.fetchRequest(ctx, flow, req)

	result := "success"
	if err != nil {
		result = "error"
	}
	m.metrics.FetchDuration.WithLabelValues(string(flow), result).Observe(time.Since(start).Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		// superseded or closed
		return
	}
	m.fetch = nil

	base := Snapshot{Flow: flow, URI: req.URI}
	if err != nil {
		m.log.Warn("authorization request failed",
			zap.String("flow", string(flow)),
			zap.String("uri", req.URI),
			zap.Error(err),
		)
		m.doneLocked(base, model.SeverityError, m.failureMessage(m.messages.FetchFailed, err))
		return
	}

	switch flow {
	case FlowPayment:
		base.State = StateWaitForConfirmation
		base.Payment = res.payment
		base.Message = model.StrValue(res.payment.Message)
		base.Severity = res.payment.Severity
		if res.transaction != nil {
			base.Transaction = res.transaction
			base.Preview = preview.Reduce(res.transaction)
			m.log.Info("payment preview", zap.Strings("lines", preview.Lines(base.Preview)))
		}
	case FlowAuth:
		base.State = StateWaitForAuth
		base.Auth = res.auth
		base.Message = model.StrValue(res.auth.UserMessage)
		base.Severity = res.auth.Severity
	}
	m.publishLocked(base)
}

func (m *Machine) fetchRequest(ctx context.Context, flow Flow, req Request) (*fetchResult, error) {
	if m.opts.Client == nil {
		return nil, errNoClient
	}

	switch flow {
	case FlowPayment:
		pay, err := m.opts.Client.FetchPayment(ctx, req.URI, req.Address)
		if err != nil {
			return nil, err
		}
		if !pay.IsComplete() {
			return nil, ErrIncompleteRequest
		}
		res := &fetchResult{payment: pay}
		if m.opts.Inspector != nil {
			info, err := preview.FromReduced(ctx, pay.ReducedTransaction, m.opts.Inspector, m.opts.Boxes)
			if err != nil {
				return nil, err
			}
			res.transaction = info
		}
		return res, nil

	case FlowAuth:
		auth, err := m.opts.Client.FetchAuth(ctx, req.URI, req.Address)
		if err != nil {
			return nil, err
		}
		if !auth.IsComplete() {
			return nil, ErrIncompleteRequest
		}
		return &fetchResult{auth: auth}, nil
	}
	return nil, ErrInvalidState
}
