package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

const (
	explorerAPI = "https://api.ergoplatform.com"
)

// Explorer resolves boxes through the Ergo explorer API
type Explorer struct {
	baseURL string
	client  *Client
}

// NewExplorer creates an explorer client. An empty baseURL uses the public explorer.
func NewExplorer(baseURL string, c *Client) *Explorer {
	if baseURL == "" {
		baseURL = explorerAPI
	}
	return &Explorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  c,
	}
}

// explorerBox is the box representation of GET /api/v1/boxes/{id}
type explorerBox struct {
	BoxID   string `json:"boxId"`
	Value   int64  `json:"value"`
	Address string `json:"address"`
	Assets  []struct {
		TokenID  string  `json:"tokenId"`
		Amount   int64   `json:"amount"`
		Name     *string `json:"name"`
		Decimals *int    `json:"decimals"`
	} `json:"assets"`
}

// LookupBox gets one box by id, spent or unspent
func (e *Explorer) LookupBox(ctx context.Context, boxID string) (model.BoxInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/boxes/%s", e.baseURL, url.PathEscape(boxID))

	var box explorerBox
	if err := e.client.getJSON(ctx, endpoint, &box); err != nil {
		return model.BoxInfo{}, fmt.Errorf("failed to get box %s: %w", boxID, err)
	}

	info := model.BoxInfo{
		BoxID:   box.BoxID,
		Value:   box.Value,
		Address: box.Address,
	}
	for _, a := range box.Assets {
		info.Assets = append(info.Assets, model.AssetInstance{
			TokenID:  a.TokenID,
			Amount:   a.Amount,
			Decimals: a.Decimals,
			Name:     a.Name,
		})
	}
	return info, nil
}
