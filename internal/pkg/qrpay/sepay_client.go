package qrpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hashop_store/internal/pkg/config"
)

// Transaction is one row from the Sepay transaction API, used by operators
// for manual reconciliation when a webhook never matched.
type Transaction struct {
	ID             string `json:"id"`
	TransactionID  string `json:"transaction_id"`
	AccountNumber  string `json:"account_number"`
	Amount         int64  `json:"amount_in"`
	Content        string `json:"transaction_content"`
	TransactionDate string `json:"transaction_date"`
}

// SepayClient is a thin client over the Sepay user API.
type SepayClient struct {
	cfg  config.SepayConfig
	http *http.Client
}

func NewSepayClient(cfg config.SepayConfig) *SepayClient {
	return &SepayClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether an API key is present. Without one the client
// is inert and callers get empty results.
func (c *SepayClient) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.APIKey != "your-sepay-api-key"
}

// GetTransactions lists recent inbound transactions on the shop account.
func (c *SepayClient) GetTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if !c.Configured() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/transactions/list", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("account_number", c.cfg.AccountNumber)
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sepay api status %d", resp.StatusCode)
	}

	var body struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Transactions, nil
}
