package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

const (
	sender    = "9gmNsqrqdSppLUBqg2UzREmmivgqh1r3jmNcLAc53hk3YCvAGWE"
	recipient = "9hHDQb26AjnJUXxcqriqY1mnhpLuUeC81C4pggtK7tupr92Ea1K"
	feeAddr   = "2iHkR7CWvD1R4j1yZg5bkeDRQavjAaVPeTDFGGLZduHyfWMuYpmhHocX8GJoaieTx78FntzJbCBVL6rf96ocJoZdmWBL2fci7NqWgAirppPQmZ7fN9V6z13Ay6brPriBKYqLp1bT2Fk4FkFLCfdPpe"
)

func dec(n int) *int { return &n }

func fixture() *model.TransactionInfo {
	tokens := []model.AssetInstance{
		{TokenID: "t1", Amount: 10, Decimals: dec(0)},
		{TokenID: "t2", Amount: 20, Decimals: dec(2)},
		{TokenID: "t3", Amount: 30},
		{TokenID: "t4", Amount: 40, Name: model.StrPtr("Token4")},
	}
	return Build("txid",
		[]model.BoxInfo{
			{BoxID: "in1", Value: 1_000_000_000, Address: sender, Assets: tokens[:2]},
			{BoxID: "in2", Value: 2_000_000_000, Address: sender, Assets: tokens[2:]},
			{BoxID: "in3", Value: 500_000_000, Address: sender},
		},
		[]model.BoxInfo{
			{Value: 1_000_000_000, Address: recipient, Assets: []model.AssetInstance{
				{TokenID: "t1", Amount: 10},
				{TokenID: "t2", Amount: 20},
				{TokenID: "t3", Amount: 30},
				{TokenID: "t4", Amount: 40},
			}},
			{Value: 2_498_900_000, Address: sender},
			{Value: 1_100_000, Address: feeAddr},
		},
	)
}

func TestReduceDoesNotMutate(t *testing.T) {
	info := fixture()
	before := info.Clone()

	reduced := Reduce(info)

	assert.Equal(t, before, info)
	assert.Len(t, info.Inputs, 3)
	assert.Len(t, info.Outputs, 3)
	assert.Len(t, info.Outputs[0].Assets, 4)

	assert.LessOrEqual(t, len(reduced.Inputs), len(info.Inputs))
	assert.LessOrEqual(t, len(reduced.Outputs), len(info.Outputs))
}

func TestReduceNetsChange(t *testing.T) {
	reduced := Reduce(fixture())

	require.Len(t, reduced.Inputs, 1)
	require.Len(t, reduced.Outputs, 2)
	assert.Equal(t, "txid", reduced.ID)

	in := reduced.Inputs[0]
	assert.Equal(t, sender, in.Address)
	assert.Equal(t, int64(3_500_000_000-2_498_900_000), in.Value)
	require.Len(t, in.Assets, 4)
	assert.Equal(t, "t1", in.Assets[0].TokenID)
	assert.Equal(t, int64(40), in.Assets[3].Amount)

	assert.Equal(t, recipient, reduced.Outputs[0].Address)
	assert.Len(t, reduced.Outputs[0].Assets, 4)
	assert.Equal(t, feeAddr, reduced.Outputs[1].Address)

	// spent amount equals what leaves the sender
	var out int64
	for _, b := range reduced.Outputs {
		out += b.Value
	}
	assert.Equal(t, in.Value, out)
}

func TestReduceIsIdempotent(t *testing.T) {
	once := Reduce(fixture())
	twice := Reduce(once)
	assert.Equal(t, once, twice)
}

func TestReduceNetsTokensBothWays(t *testing.T) {
	info := Build("tx",
		[]model.BoxInfo{
			{Value: 100, Address: "A", Assets: []model.AssetInstance{{TokenID: "x", Amount: 5}}},
		},
		[]model.BoxInfo{
			{Value: 100, Address: "A", Assets: []model.AssetInstance{{TokenID: "x", Amount: 8}}},
		},
	)

	reduced := Reduce(info)
	assert.Empty(t, reduced.Inputs)
	require.Len(t, reduced.Outputs, 1)
	assert.Equal(t, int64(0), reduced.Outputs[0].Value)
	assert.Equal(t, []model.AssetInstance{{TokenID: "x", Amount: 3}}, reduced.Outputs[0].Assets)

	assert.Equal(t, int64(5), info.Inputs[0].Assets[0].Amount)
	assert.Equal(t, int64(8), info.Outputs[0].Assets[0].Amount)
}

func TestReduceNil(t *testing.T) {
	assert.Nil(t, Reduce(nil))
}

type fakeInspector struct {
	skeleton *TxSkeleton
	boxes    map[string]model.BoxInfo
}

func (f *fakeInspector) InspectReduced(reduced []byte) (*TxSkeleton, error) {
	if len(reduced) == 0 {
		return nil, errors.New("empty")
	}
	return f.skeleton, nil
}

func (f *fakeInspector) DecodeBox(serialized []byte) (model.BoxInfo, error) {
	box, ok := f.boxes[string(serialized)]
	if !ok {
		return model.BoxInfo{}, errors.New("unknown box")
	}
	return box, nil
}

type fakeLookup map[string]model.BoxInfo

func (f fakeLookup) LookupBox(_ context.Context, id string) (model.BoxInfo, error) {
	box, ok := f[id]
	if !ok {
		return model.BoxInfo{}, errors.New("not found")
	}
	return box, nil
}

func testInspector() *fakeInspector {
	return &fakeInspector{
		skeleton: &TxSkeleton{
			ID:       "txid",
			InputIDs: []string{"in1"},
			Outputs:  []model.BoxInfo{{Value: 5, Address: recipient}},
		},
		boxes: map[string]model.BoxInfo{"INPUT1": {BoxID: "in1", Value: 10, Address: sender}},
	}
}

func TestFromColdRequest(t *testing.T) {
	req := &model.ColdSigningRequest{
		ReducedTransaction: []byte("DUMMYDATA"),
		SenderAddress:      sender,
		InputBoxes:         [][]byte{[]byte("INPUT1")},
	}

	info, err := FromColdRequest(req, testInspector())
	require.NoError(t, err)
	assert.Equal(t, "txid", info.ID)
	require.Len(t, info.Inputs, 1)
	assert.Equal(t, int64(10), info.Inputs[0].Value)
	assert.Len(t, info.Outputs, 1)
}

func TestFromColdRequestMissingBoxes(t *testing.T) {
	req := &model.ColdSigningRequest{
		ReducedTransaction: []byte("DUMMYDATA"),
		SenderAddress:      sender,
	}

	info, err := FromColdRequest(req, testInspector())
	assert.ErrorIs(t, err, ErrMissingBoxContext)
	assert.Nil(t, info)
}

func TestFromReduced(t *testing.T) {
	lookup := fakeLookup{"in1": {Value: 10, Address: sender}}

	info, err := FromReduced(context.Background(), []byte("DUMMYDATA"), testInspector(), lookup)
	require.NoError(t, err)
	require.Len(t, info.Inputs, 1)
	assert.Equal(t, "in1", info.Inputs[0].BoxID)

	_, err = FromReduced(context.Background(), []byte("DUMMYDATA"), testInspector(), nil)
	assert.ErrorIs(t, err, ErrMissingBoxContext)

	_, err = FromReduced(context.Background(), []byte("DUMMYDATA"), testInspector(), fakeLookup{})
	assert.Error(t, err)
}

func TestLines(t *testing.T) {
	lines := Lines(Reduce(fixture()))
	require.Len(t, lines, 4)
	assert.Equal(t, "Transaction txid", lines[0])
	assert.Contains(t, lines[1], sender+": 1.001100000 ERG")
	assert.Contains(t, lines[1], "0.20 t2")
	assert.Contains(t, lines[1], "40 Token4")
}
