// Package preview builds the transaction view a user confirms before signing.
package preview

import (
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// Build materializes a transaction preview from already decoded boxes
func Build(transactionID string, inputs, outputs []model.BoxInfo) *model.TransactionInfo {
	return &model.TransactionInfo{
		ID:      transactionID,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// Reduce nets same-address activity into a simplified view.
// Inputs and outputs are merged per address, then for every address on both
// sides the smaller value and token amounts are subtracted from the larger.
// Entries left with zero value and no tokens are dropped. info is not modified.
func Reduce(info *model.TransactionInfo) *model.TransactionInfo {
	if info == nil {
		return nil
	}

	inputs := mergeByAddress(info.Inputs)
	outputs := mergeByAddress(info.Outputs)

	outByAddr := make(map[string]*model.BoxInfo, len(outputs))
	for i := range outputs {
		outByAddr[outputs[i].Address] = &outputs[i]
	}
	for i := range inputs {
		if out, ok := outByAddr[inputs[i].Address]; ok {
			net(&inputs[i], out)
		}
	}

	return &model.TransactionInfo{
		ID:      info.ID,
		Inputs:  dropEmpty(inputs),
		Outputs: dropEmpty(outputs),
	}
}

// mergeByAddress sums boxes per address keeping first-appearance order.
// The result never shares asset slices with boxes.
func mergeByAddress(boxes []model.BoxInfo) []model.BoxInfo {
	merged := make([]model.BoxInfo, 0, len(boxes))
	index := make(map[string]int, len(boxes))

	for _, b := range boxes {
		i, ok := index[b.Address]
		if !ok {
			index[b.Address] = len(merged)
			merged = append(merged, model.BoxInfo{Address: b.Address, BoxID: b.BoxID})
			i = len(merged) - 1
		} else {
			merged[i].BoxID = ""
		}
		merged[i].Value += b.Value
		merged[i].Assets = addAssets(merged[i].Assets, b.Assets)
	}
	return merged
}

// addAssets adds src amounts into dst per token id, appending unknown tokens
func addAssets(dst, src []model.AssetInstance) []model.AssetInstance {
	for _, a := range src {
		found := false
		for j := range dst {
			if dst[j].TokenID == a.TokenID {
				dst[j].Amount += a.Amount
				if dst[j].Decimals == nil {
					dst[j].Decimals = a.Decimals
				}
				if dst[j].Name == nil {
					dst[j].Name = a.Name
				}
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, a)
		}
	}
	return dst
}

// net subtracts the smaller side from the larger for value and every shared token
func net(in, out *model.BoxInfo) {
	in.Value, out.Value = netAmounts(in.Value, out.Value)

	for i := range in.Assets {
		for j := range out.Assets {
			if in.Assets[i].TokenID == out.Assets[j].TokenID {
				in.Assets[i].Amount, out.Assets[j].Amount = netAmounts(in.Assets[i].Amount, out.Assets[j].Amount)
			}
		}
	}
	in.Assets = dropZeroAssets(in.Assets)
	out.Assets = dropZeroAssets(out.Assets)
}

func netAmounts(a, b int64) (int64, int64) {
	if a >= b {
		return a - b, 0
	}
	return 0, b - a
}

func dropZeroAssets(assets []model.AssetInstance) []model.AssetInstance {
	kept := assets[:0]
	for _, a := range assets {
		if a.Amount != 0 {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func dropEmpty(boxes []model.BoxInfo) []model.BoxInfo {
	kept := make([]model.BoxInfo, 0, len(boxes))
	for _, b := range boxes {
		if b.Value == 0 && len(b.Assets) == 0 {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}
