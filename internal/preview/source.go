package preview

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// ErrMissingBoxContext is returned when a transaction declares inputs but the
// boxes needed to show them are not available
var ErrMissingBoxContext = errors.New("missing input box context")

// TxSkeleton is what the signing library reports about a reduced transaction
type TxSkeleton struct {
	ID       string
	InputIDs []string
	Outputs  []model.BoxInfo
}

// Inspector decodes serialized transactions and boxes. It is provided by the
// external signing library.
type Inspector interface {
	InspectReduced(reduced []byte) (*TxSkeleton, error)
	DecodeBox(serialized []byte) (model.BoxInfo, error)
}

// BoxLookup resolves a box id to its contents, e.g. from a node or explorer
type BoxLookup interface {
	LookupBox(ctx context.Context, boxID string) (model.BoxInfo, error)
}

// FromColdRequest builds the preview of a cold signing request from the input
// boxes carried inline with it
func FromColdRequest(req *model.ColdSigningRequest, inspector Inspector) (*model.TransactionInfo, error) {
	if req == nil {
		return nil, errors.New("nil cold signing request")
	}
	skeleton, err := inspector.InspectReduced(req.ReducedTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect reduced transaction: %w", err)
	}

	if len(req.InputBoxes) < len(skeleton.InputIDs) {
		return nil, fmt.Errorf("%w: transaction declares %d inputs, request carries %d boxes",
			ErrMissingBoxContext, len(skeleton.InputIDs), len(req.InputBoxes))
	}

	inputs := make([]model.BoxInfo, 0, len(req.InputBoxes))
	for i, raw := range req.InputBoxes {
		box, err := inspector.DecodeBox(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode input box %d: %w", i, err)
		}
		inputs = append(inputs, box)
	}
	return Build(skeleton.ID, inputs, skeleton.Outputs), nil
}

// FromReduced builds the preview of a reduced transaction received over the
// network, resolving its inputs through lookup
func FromReduced(ctx context.Context, reduced []byte, inspector Inspector, lookup BoxLookup) (*model.TransactionInfo, error) {
	skeleton, err := inspector.InspectReduced(reduced)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect reduced transaction: %w", err)
	}

	if len(skeleton.InputIDs) > 0 && lookup == nil {
		return nil, fmt.Errorf("%w: no box source for %d inputs", ErrMissingBoxContext, len(skeleton.InputIDs))
	}

	inputs := make([]model.BoxInfo, 0, len(skeleton.InputIDs))
	for _, id := range skeleton.InputIDs {
		box, err := lookup.LookupBox(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up input box %s: %w", id, err)
		}
		if box.BoxID == "" {
			box.BoxID = id
		}
		inputs = append(inputs, box)
	}
	return Build(skeleton.ID, inputs, skeleton.Outputs), nil
}
