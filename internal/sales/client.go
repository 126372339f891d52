// Package sales forwards settled orders to the upstream sales
// platform. The push is best effort: a failed or unconfigured sync
// never blocks a sale, it only logs.
package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/database"
)

const pushTimeout = 10 * time.Second

type Client struct {
	url    string
	key    string
	secret string
	http   *http.Client
	log    zerolog.Logger
}

// NewClient degrades to a logged no-op when credentials are missing,
// which is the normal state for a standalone installation.
func NewClient(url, key, secret string, log zerolog.Logger) *Client {
	return &Client{
		url:    url,
		key:    key,
		secret: secret,
		http:   &http.Client{Timeout: pushTimeout},
		log:    log,
	}
}

func (c *Client) configured() bool {
	return c.url != "" && c.key != "" && c.secret != ""
}

type transactionLine struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int32  `json:"quantity"`
}

type transaction struct {
	Reference     string            `json:"reference"`
	Total         string            `json:"total"`
	Tax           string            `json:"tax"`
	Tip           string            `json:"tip"`
	PaymentMethod string            `json:"paymentMethod"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	Lines         []transactionLine `json:"lines"`
}

// Push uploads one settled order. Errors are logged and swallowed.
func (c *Client) Push(o *database.Order) {
	if !c.configured() {
		c.log.Debug().Str("order_id", o.ID.String()).Msg("sales sync not configured, skipping push")
		return
	}

	txn := transaction{
		Reference:     o.ID.String(),
		Total:         o.Total.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Tip:           o.Tip.StringFixed(2),
		PaymentMethod: o.PaymentMethod,
		CompletedAt:   o.CompletedAt,
	}
	for _, item := range o.Items {
		txn.Lines = append(txn.Lines, transactionLine{
			Name:      item.Name,
			Category:  item.Category,
			UnitPrice: item.Price.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	body, err := json.Marshal(txn)
	if err != nil {
		c.log.Error().Err(err).Str("order_id", o.ID.String()).Msg("sales sync marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.Error().Err(err).Msg("sales sync request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("sales sync push failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("order_id", o.ID.String()).
			Msg("sales sync push rejected")
		return
	}
	c.log.Info().Str("order_id", o.ID.String()).Msg("order pushed to sales platform")
}
