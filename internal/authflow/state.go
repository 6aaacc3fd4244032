// Package authflow drives ErgoPay, ErgoAuth and cold signing sessions from
// request to completion.
package authflow

import (
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// State of an authorization session
type State string

const (
	StateFetchData           State = "FETCH_DATA"
	StateScanning            State = "SCANNING"
	StateWaitForConfirmation State = "WAIT_FOR_CONFIRMATION"
	StateWaitForAuth         State = "WAIT_FOR_AUTH"
	StateDone                State = "DONE"
)

// Flow identifies which protocol a session runs
type Flow string

const (
	FlowPayment Flow = "ergopay"
	FlowAuth    Flow = "ergoauth"
	FlowCold    Flow = "cold"
)

// Snapshot is an immutable view of a session after a transition.
// Pointer fields are shared between snapshots and must not be modified.
type Snapshot struct {
	Session uint64 `json:"session"`
	Flow    Flow   `json:"flow"`
	State   State  `json:"state"`
	URI     string `json:"uri,omitempty"`

	Payment     *model.ErgoPaySigningRequest `json:"payment,omitempty"`
	Auth        *model.ErgoAuthRequest       `json:"auth,omitempty"`
	ColdRequest *model.ColdSigningRequest    `json:"-"`

	// Transaction is the full preview, Preview the netted one shown to the user
	Transaction *model.TransactionInfo `json:"transaction,omitempty"`
	Preview     *model.TransactionInfo `json:"preview,omitempty"`

	Message  string         `json:"message,omitempty"`
	Severity model.Severity `json:"severity"`

	PagesSeen   int      `json:"pagesSeen,omitempty"`
	PagesTotal  int      `json:"pagesTotal,omitempty"`
	ResultPages []string `json:"resultPages,omitempty"`
	TxID        string   `json:"txId,omitempty"`
}

// StateChanged is emitted once per transition
type StateChanged struct {
	Previous State
	Snapshot Snapshot
}

// Listener receives the transitions of one session
type Listener func(StateChanged)

// Request starts a network driven session
type Request struct {
	URI     string
	Address string // wallet address substituted into dynamic requests
}

// Messages are the user-facing texts set on DONE
type Messages struct {
	FetchFailed      string
	SubmitFailed     string
	Unsupported      string
	PaymentSubmitted string
	ColdSigned       string
	AuthSucceeded    string
}

// DefaultMessages is the English message set
var DefaultMessages = Messages{
	FetchFailed:      "Could not load the request",
	SubmitFailed:     "Could not complete the request",
	Unsupported:      "Unsupported request",
	PaymentSubmitted: "Transaction submitted",
	ColdSigned:       "Transaction signed. Scan the result with your wallet",
	AuthSucceeded:    "Authentication successful",
}
