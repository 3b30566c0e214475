package notify

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatVND renders an amount with thousands separators, e.g. "50.000đ".
func FormatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out + "đ"
}

// UnmatchedTransactionMessage is sent when a webhook matched no pending order.
func UnmatchedTransactionMessage(amount int64, content, gateway, txID string) string {
	return fmt.Sprintf(
		"⚠️ GIAO DỊCH KHÔNG XÁC ĐỊNH\n\n"+
			"💰 Số tiền: %s\n"+
			"📝 Nội dung: %s\n"+
			"🏦 Ngân hàng: %s\n"+
			"🆔 Mã GD: %s\n\n"+
			"Vui lòng kiểm tra thủ công!",
		FormatVND(amount), content, gateway, txID)
}

// PaymentDeliveredMessage announces a fully auto-delivered paid order.
func PaymentDeliveredMessage(order OrderInfo, txID string, creds []Credential) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"🎉 ĐƠN HÀNG THANH TOÁN THÀNH CÔNG\n\n"+
			"📦 Mã đơn: %s\n"+
			"👤 Khách hàng: %s\n"+
			"📧 Email: %s\n"+
			"💰 Số tiền: %s\n"+
			"🏦 Mã GD: %s\n\n",
		order.OrderCode, order.CustomerName, order.CustomerEmail,
		FormatVND(order.TotalAmount), txID)

	fmt.Fprintf(&b, "✅ Đã giao %d tài khoản\n\n📋 Danh sách tài khoản:\n", len(creds))
	for i, acc := range creds {
		name := acc.VariantName
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&b, "%d. %s\n   • User: %s\n   • Pass: %s\n", i+1, name, acc.Username, acc.Password)
	}
	return b.String()
}

// NeedsPreparationMessage announces a paid order requiring manual fulfillment.
// The customer has paid; exactly one of these is sent per order.
func NeedsPreparationMessage(order OrderInfo, items []PrepItem) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"🔔 ĐƠN HÀNG CẦN CHUẨN BỊ HÀNG!\n\n"+
			"📋 Mã đơn: %s\n"+
			"💰 Tổng tiền: %s\n\n"+
			"👤 Khách hàng:\n"+
			"  • Tên: %s\n"+
			"  • Email: %s\n"+
			"  • SĐT: %s\n\n"+
			"📦 Sản phẩm cần chuẩn bị:\n",
		order.OrderCode, FormatVND(order.TotalAmount),
		order.CustomerName, order.CustomerEmail, phoneOrNA(order.CustomerPhone))

	for _, item := range items {
		fmt.Fprintf(&b, "  • %s - %s (Cần: %d, Có: %d) — %s\n",
			item.ProductName, item.VariantName, item.Requested, item.Available, item.Reason)
	}

	b.WriteString(
		"\n⏱️ Thời hạn giao hàng: 30 phút (giờ làm việc 7h-00h)\n\n" +
			"🚨 Lưu ý: Khách hàng đã thanh toán, cần chuẩn bị và gửi thông tin tài khoản ngay!")
	return b.String()
}

// OrderExpiredMessage is the optional expiration-hook alert.
func OrderExpiredMessage(orderCode string, totalAmount int64, reason string) string {
	return fmt.Sprintf(
		"❌ ĐƠN HÀNG BỊ HỦY\n\n"+
			"📋 Mã đơn: %s\n"+
			"💰 Số tiền: %s\n"+
			"📝 Lý do: %s",
		orderCode, FormatVND(totalAmount), reason)
}

func phoneOrNA(phone string) string {
	if phone == "" {
		return "N/A"
	}
	return phone
}
