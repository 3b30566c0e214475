package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"hashop_store/internal/pkg/config"

	"go.uber.org/zap"
)

// Mailer sends customer mail over SMTP (Gmail app passwords by default).
type Mailer struct {
	cfg      config.EmailConfig
	siteName string
	log      *zap.Logger
}

func NewMailer(cfg config.EmailConfig, siteName string, log *zap.Logger) *Mailer {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &Mailer{cfg: cfg, siteName: siteName, log: log}
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool {
	return m.cfg.Username != "" && m.cfg.Password != ""
}

// SendAccountInfo mails the delivered credentials to the customer.
func (m *Mailer) SendAccountInfo(order OrderInfo, creds []Credential) error {
	if !m.Configured() {
		m.log.Debug("mailer not configured, dropping email")
		return nil
	}

	subject := fmt.Sprintf("🎉 Đơn hàng %s - Thông tin tài khoản", order.OrderCode)
	body := m.accountInfoHTML(order, creds)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: \"%s\" <%s>\r\n", m.siteName, m.cfg.Username)
	fmt.Fprintf(&msg, "To: %s\r\n", order.CustomerEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	return smtp.SendMail(addr, auth, m.cfg.Username, []string{order.CustomerEmail}, []byte(msg.String()))
}

func (m *Mailer) accountInfoHTML(order OrderInfo, creds []Credential) string {
	var accounts strings.Builder
	for i, acc := range creds {
		name := acc.VariantName
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&accounts, `
<div style="background:#f8f9fa;padding:15px;margin:10px 0;border-radius:8px;border-left:4px solid #28a745;">
  <h4 style="margin:0 0 10px 0;color:#28a745;">Tài khoản %d</h4>
  <p style="margin:5px 0;"><strong>Gói:</strong> %s</p>
  <p style="margin:5px 0;"><strong>Tên đăng nhập:</strong> <code>%s</code></p>
  <p style="margin:5px 0;"><strong>Mật khẩu:</strong> <code>%s</code></p>
</div>`, i+1, name, acc.Username, acc.Password)
	}

	return fmt.Sprintf(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <h2 style="color:#333;">Cảm ơn bạn đã mua hàng tại %s!</h2>
  <p>Đơn hàng <strong>%s</strong> của bạn đã được thanh toán và giao thành công.</p>
  <p><strong>Tổng tiền:</strong> %s</p>
  <h3>Thông tin tài khoản</h3>
  %s
  <p style="color:#888;font-size:13px;">Vui lòng đổi mật khẩu sau khi đăng nhập nếu dịch vụ cho phép.
  Nếu cần hỗ trợ, hãy trả lời email này.</p>
</div>`, m.siteName, order.OrderCode, FormatVND(order.TotalAmount), accounts.String())
}
