package authflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/AlexZinkM/ergo-wallet/internal/coldsign"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

const signedMessagePrefixLen = 8

// Confirm signs the pending transaction with secret. The machine takes
// ownership of secret and wipes it when the submit task ends.
// A running submit task of this session is superseded.
func (m *Machine) Confirm(secret *model.WalletSecret) error {
	return m.startSubmit(StateWaitForConfirmation, secret, m.runConfirm)
}

// Authenticate answers the pending ErgoAuth request with secret.
// Ownership of secret passes to the machine as for Confirm.
func (m *Machine) Authenticate(secret *model.WalletSecret) error {
	return m.startSubmit(StateWaitForAuth, secret, m.runAuthenticate)
}

type submitFunc func(ctx context.Context, snap Snapshot, secret *model.WalletSecret) (Snapshot, error)

func (m *Machine) startSubmit(want State, secret *model.WalletSecret, fn submitFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := *m.snap.Load()
	if snap.State != want {
		secret.Wipe()
		return fmt.Errorf("%w: %s", ErrInvalidState, snap.State)
	}

	m.submit.stop()
	ctx, cancel := m.withTimeout(context.Background(), m.opts.SubmitTimeout)
	t := newTask(cancel)
	m.submit = t
	go m.runSubmit(ctx, t, m.gen, snap, secret, fn)
	return nil
}

func (m *Machine) runSubmit(ctx context.Context, t *task, gen uint64, snap Snapshot, secret *model.WalletSecret, fn submitFunc) {
	defer close(t.done)
	defer t.cancel()

	done, err := fn(ctx, snap, secret)
	secret.Wipe()

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.submit != t {
		return
	}
	m.submit = nil

	if err != nil {
		m.log.Warn("authorization submit failed", zap.String("flow", string(snap.Flow)), zap.Error(err))
		m.doneLocked(snap, model.SeverityError, m.failureMessage(m.messages.SubmitFailed, err))
		return
	}
	m.publishLocked(done)
}

func (m *Machine) runConfirm(ctx context.Context, snap Snapshot, secret *model.WalletSecret) (Snapshot, error) {
	if m.opts.Signer == nil {
		return snap, ErrSignerUnavailable
	}

	if snap.Flow == FlowCold {
		req := snap.ColdRequest
		signed, err := m.opts.Signer.SignReduced(ctx, secret, req.ReducedTransaction, req.InputBoxes)
		if err != nil {
			return snap, fmt.Errorf("failed to sign transaction: %w", err)
		}
		pages, err := coldsign.ResultPages(&model.ColdSigningResult{
			Success:        true,
			Payload:        signed.Bytes,
			SubjectAddress: req.SenderAddress,
		}, m.opts.FragmentSize)
		if err != nil {
			return snap, err
		}
		snap.State = StateDone
		snap.Severity = model.SeverityNone
		snap.Message = m.messages.ColdSigned
		snap.ResultPages = pages
		snap.TxID = transactionID(signed)
		return snap, nil
	}

	pay := snap.Payment
	signed, err := m.opts.Signer.SignReduced(ctx, secret, pay.ReducedTransaction, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to sign transaction: %w", err)
	}

	txID := transactionID(signed)
	if m.opts.Broadcaster != nil {
		txID, err = m.opts.Broadcaster.Broadcast(ctx, signed)
		if err != nil {
			return snap, fmt.Errorf("failed to broadcast transaction: %w", err)
		}
	}

	if replyTo := model.StrValue(pay.ReplyToURL); replyTo != "" {
		if err := m.opts.Client.ReplyPayment(ctx, replyTo, txID); err != nil {
			return snap, err
		}
	}

	m.log.Info("payment submitted", zap.String("txId", txID))
	snap.State = StateDone
	snap.Severity = model.SeverityNone
	snap.Message = fmt.Sprintf("%s: %s", m.messages.PaymentSubmitted, txID)
	snap.TxID = txID
	return snap, nil
}

func (m *Machine) runAuthenticate(ctx context.Context, snap Snapshot, secret *model.WalletSecret) (Snapshot, error) {
	if m.opts.MessageSigner == nil {
		return snap, ErrSignerUnavailable
	}
	auth := snap.Auth
	replyTo := model.StrValue(auth.ReplyToURL)

	signedMessage, err := buildSignedMessage(model.StrValue(auth.SigningMessage), replyTo)
	if err != nil {
		return snap, err
	}

	proof, err := m.opts.MessageSigner.SignMessage(ctx, secret, auth.SubjectProof, []byte(signedMessage))
	if err != nil {
		return snap, fmt.Errorf("failed to sign message: %w", err)
	}

	err = m.opts.Client.ReplyAuth(ctx, replyTo, &model.ErgoAuthResponse{
		SignedMessage: signedMessage,
		Proof:         hex.EncodeToString(proof),
	})
	if err != nil {
		return snap, err
	}

	snap.State = StateDone
	snap.Severity = model.SeverityNone
	snap.Message = m.messages.AuthSucceeded
	return snap, nil
}

// buildSignedMessage wraps the dApp challenge with a random prefix and the
// reply host so the signature cannot be replayed for another purpose
func buildSignedMessage(signingMessage, replyTo string) (string, error) {
	u, err := url.Parse(replyTo)
	if err != nil {
		return "", fmt.Errorf("invalid replyTo: %w", err)
	}
	prefix := make([]byte, signedMessagePrefixLen)
	if _, err := rand.Read(prefix); err != nil {
		return "", fmt.Errorf("failed to generate message prefix: %w", err)
	}
	return hex.EncodeToString(prefix) + signingMessage + u.Host, nil
}

// transactionID falls back to the blake2b256 digest of the serialized
// transaction when the signer did not report an id
func transactionID(tx *model.SignedTransaction) string {
	if tx.ID != "" {
		return tx.ID
	}
	sum := blake2b.Sum256(tx.Bytes)
	return hex.EncodeToString(sum[:])
}
