// Package notify delivers operator alerts (Telegram) and customer mail
// (SMTP). Sends are best-effort: a failed notification is logged and retried
// but never propagates back into the order pipeline.
package notify

import "context"

// OrderInfo is the slice of an order that notifications need. The order
// domain maps into this so notify stays free of domain imports.
type OrderInfo struct {
	OrderCode     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TotalAmount   int64
	CreatedAt     string
}

// Credential is one delivered username/password pair.
type Credential struct {
	VariantName string
	Username    string
	Password    string
}

// PrepItem is one order line that needs manual preparation.
type PrepItem struct {
	ProductName string
	VariantName string
	Requested   int
	Available   int64
	Reason      string
}

// Notifier is consumed by the order pipeline. Implementations must not
// block the caller beyond enqueueing.
type Notifier interface {
	// AlertOperator sends a free-form operator message.
	AlertOperator(ctx context.Context, text string)
	// NotifyPaymentDelivered announces a paid order with its delivered credentials.
	NotifyPaymentDelivered(ctx context.Context, order OrderInfo, txID string, creds []Credential)
	// NotifyNeedsPreparation announces a paid order that requires manual fulfillment.
	NotifyNeedsPreparation(ctx context.Context, order OrderInfo, items []PrepItem)
	// EmailCustomer sends the delivered credentials to the customer.
	EmailCustomer(ctx context.Context, order OrderInfo, creds []Credential)
}

// Nop discards everything; used in tests and when channels are unconfigured.
type Nop struct{}

func (Nop) AlertOperator(context.Context, string)                                {}
func (Nop) NotifyPaymentDelivered(context.Context, OrderInfo, string, []Credential) {}
func (Nop) NotifyNeedsPreparation(context.Context, OrderInfo, []PrepItem)        {}
func (Nop) EmailCustomer(context.Context, OrderInfo, []Credential)               {}
