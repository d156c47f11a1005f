package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// MailService sends transactional mail over SMTP. Delivery is best-effort;
// callers log failures and carry on.
type MailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")

	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = user
	}

	return &MailService{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Configured reports whether an SMTP host is set. Without one, invite mail
// is skipped entirely.
func (m *MailService) Configured() bool {
	return m.dialer.Host != ""
}

func (m *MailService) SendVaultInviteMail(to, inviterName, vaultName, role, token string) error {
	inviteLink := fmt.Sprintf("%s/invitations?token=%s", os.Getenv("CLIENT_URL"), token)

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("%s invited you to the vault %q", inviterName, vaultName))
	message.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
			<h2 style="color: #333; text-align: center;">You have been invited to a vault</h2>
			<p>%s invited you to join the vault <strong>%s</strong> as a %s.</p>
			<p style="text-align: center;"><a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #3B82F6; color: #fff; text-decoration: none; border-radius: 5px;">View invitation</a></p>
			<p>If you do not have an account yet, register first and the invitation will be waiting for you.</p>
		</div>
	`, inviterName, vaultName, role, inviteLink))

	return m.dialer.DialAndSend(message)
}
