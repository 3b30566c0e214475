// Package qrpay builds VietQR payment artifacts and matches bank-transfer
// remittance text against order codes.
package qrpay

import (
	"fmt"
	"net/url"
	"strings"

	"hashop_store/internal/pkg/config"
)

// BankInfo is returned to customers alongside the QR image.
type BankInfo struct {
	BankCode      string `json:"bankCode"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// Provider turns an order into payment instructions.
type Provider interface {
	ImageURL(amount int64, content string) string
	TransferContent(orderCode string) string
	Bank() BankInfo
}

type vietQRProvider struct {
	cfg config.SepayConfig
}

// NewVietQR builds a Provider backed by the img.vietqr.io image service.
func NewVietQR(cfg config.SepayConfig) Provider {
	return &vietQRProvider{cfg: cfg}
}

// ImageURL returns the VietQR image for a transfer into the shop account.
func (p *vietQRProvider) ImageURL(amount int64, content string) string {
	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact.png?amount=%d&addInfo=%s",
		p.cfg.BankCode, p.cfg.AccountNumber, amount, url.QueryEscape(content))
}

// TransferContent is the remittance text customers are asked to send.
// Format: THANHTOAN <orderCode>.
func (p *vietQRProvider) TransferContent(orderCode string) string {
	return "THANHTOAN " + orderCode
}

func (p *vietQRProvider) Bank() BankInfo {
	return BankInfo{
		BankCode:      p.cfg.BankCode,
		BankName:      BankName(p.cfg.BankCode),
		AccountNumber: p.cfg.AccountNumber,
		AccountName:   p.cfg.AccountName,
	}
}

var bankNames = map[string]string{
	"MB":   "MB Bank (Quân đội)",
	"VCB":  "Vietcombank",
	"TCB":  "Techcombank",
	"ACB":  "ACB",
	"VIB":  "VIB",
	"VPB":  "VPBank",
	"TPB":  "TPBank",
	"BIDV": "BIDV",
	"AGR":  "Agribank",
	"SCB":  "Sacombank",
	"MSB":  "MSB",
	"SHB":  "SHB",
}

// BankName resolves a display name for a bank code, falling back to the code.
func BankName(code string) string {
	if name, ok := bankNames[code]; ok {
		return name
	}
	return code
}

// NormalizeContent strips everything but A-Z0-9 and uppercases, so that
// "thanhtoan dh-123" still matches "DH123".
func NormalizeContent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchContent reports whether the remittance text contains the order code.
func MatchContent(content, orderCode string) bool {
	if content == "" || orderCode == "" {
		return false
	}
	return strings.Contains(NormalizeContent(content), NormalizeContent(orderCode))
}

// MatchAmount reports whether the transferred amount is within tolerance of
// the order total. Banks occasionally shave fees or customers round up.
func MatchAmount(transferred, total, tolerance int64) bool {
	diff := transferred - total
	if diff < 0 {
		diff = -diff
	}
	return diff < tolerance
}
