package model

// AssetInstance is a token amount held by a box
type AssetInstance struct {
	TokenID  string  `json:"tokenId"`
	Amount   int64   `json:"amount"`
	Decimals *int    `json:"decimals,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// BoxInfo is the display view of a transaction input or output box
type BoxInfo struct {
	BoxID   string          `json:"boxId,omitempty"`
	Value   int64           `json:"value"` // nanoERG
	Address string          `json:"address"`
	Assets  []AssetInstance `json:"assets,omitempty"`
}

// TransactionInfo is the preview of a transaction shown to the user before signing
type TransactionInfo struct {
	ID      string    `json:"id"`
	Inputs  []BoxInfo `json:"inputs"`
	Outputs []BoxInfo `json:"outputs"`
}

// Clone returns a deep copy of the box
func (b BoxInfo) Clone() BoxInfo {
	out := b
	if b.Assets != nil {
		out.Assets = make([]AssetInstance, len(b.Assets))
		copy(out.Assets, b.Assets)
	}
	return out
}

// Clone returns a deep copy of the transaction info
func (t *TransactionInfo) Clone() *TransactionInfo {
	if t == nil {
		return nil
	}
	out := &TransactionInfo{ID: t.ID}
	out.Inputs = cloneBoxes(t.Inputs)
	out.Outputs = cloneBoxes(t.Outputs)
	return out
}

func cloneBoxes(boxes []BoxInfo) []BoxInfo {
	if boxes == nil {
		return nil
	}
	out := make([]BoxInfo, len(boxes))
	for i, b := range boxes {
		out[i] = b.Clone()
	}
	return out
}
