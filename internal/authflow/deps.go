package authflow

import (
	"context"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// RemoteClient fetches requests and delivers replies; *client.Client implements it
type RemoteClient interface {
	FetchPayment(ctx context.Context, uri, address string) (*model.ErgoPaySigningRequest, error)
	FetchAuth(ctx context.Context, uri, address string) (*model.ErgoAuthRequest, error)
	ReplyPayment(ctx context.Context, replyTo, txID string) error
	ReplyAuth(ctx context.Context, replyTo string, resp *model.ErgoAuthResponse) error
}

// TransactionSigner signs reduced transactions with the unlocked wallet secret
type TransactionSigner interface {
	SignReduced(ctx context.Context, secret *model.WalletSecret, reduced []byte, inputBoxes [][]byte) (*model.SignedTransaction, error)
}

// MessageSigner proves ownership of the subject proposition by signing message
type MessageSigner interface {
	SignMessage(ctx context.Context, secret *model.WalletSecret, subjectProof, message []byte) ([]byte, error)
}

// Broadcaster submits a signed transaction to the network and returns its id
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *model.SignedTransaction) (string, error)
}
