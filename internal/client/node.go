package client

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// Node submits signed transactions to an Ergo node
type Node struct {
	baseURL string
	client  *Client
}

// NewNode creates a node client for baseURL, e.g. http://127.0.0.1:9053
func NewNode(baseURL string, c *Client) (*Node, error) {
	if baseURL == "" {
		return nil, errors.New("node URL is empty")
	}
	return &Node{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  c,
	}, nil
}

// Broadcast posts the serialized transaction to /transactions/bytes and
// returns the id the node assigned
func (n *Node) Broadcast(ctx context.Context, tx *model.SignedTransaction) (string, error) {
	if tx == nil || len(tx.Bytes) == 0 {
		return "", errors.New("empty transaction")
	}

	var txID string
	endpoint := n.baseURL + "/transactions/bytes"
	if err := n.client.postJSON(ctx, endpoint, hex.EncodeToString(tx.Bytes), &txID); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}

	n.client.log.Info("transaction broadcast", zap.String("txId", txID))
	return txID, nil
}
