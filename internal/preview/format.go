package preview

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/ergo-wallet/internal/common"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// FormatBox renders a box as a single human readable line
func FormatBox(b model.BoxInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s ERG", b.Address, common.NanoErgToErg(b.Value))
	for _, a := range b.Assets {
		name := a.TokenID
		if a.Name != nil && *a.Name != "" {
			name = *a.Name
		}
		fmt.Fprintf(&sb, ", %s %s", common.FormatTokenAmount(a.Amount, a.Decimals), name)
	}
	return sb.String()
}

// Lines renders the inputs and outputs of info for terminal display
func Lines(info *model.TransactionInfo) []string {
	lines := []string{"Transaction " + info.ID}
	for _, b := range info.Inputs {
		lines = append(lines, "  in:  "+FormatBox(b))
	}
	for _, b := range info.Outputs {
		lines = append(lines, "  out: "+FormatBox(b))
	}
	return lines
}
