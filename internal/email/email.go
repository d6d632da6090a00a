package email

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"html/template"
	"log/slog"
	"math/big"
	"net/smtp"
	"sort"
)

type Sender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// send is smtp.SendMail outside of tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(host, port, username, password, from string) *Sender {
	return &Sender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		send:     smtp.SendMail,
	}
}

// GenerateCode returns a random 4-digit code, zero padded.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

var resetTemplate = template.Must(template.New("reset").Parse(`
<!DOCTYPE html>
<html lang="en">
<body style="margin:0;padding:24px;background:#f4f5f7;font-family:Helvetica,sans-serif;color:#222">
  <table role="presentation" width="100%" style="max-width:480px;margin:auto;background:#fff;border-radius:8px;padding:24px">
    <tr><td>Hi {{.Name}},</td></tr>
    <tr><td style="padding-top:12px">Use this code to reset your Messenger password:</td></tr>
    <tr><td style="padding:20px 0;font-size:28px;letter-spacing:6px;text-align:center"><b>{{.Code}}</b></td></tr>
    <tr><td style="font-size:13px;color:#666">If you didn't ask for a reset, you can safely ignore this email.</td></tr>
  </table>
</body>
</html>
`))

func (s *Sender) SendResetCode(to, name, code string) error {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, map[string]string{"Name": name, "Code": code}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return s.sendHTML(to, "Your Messenger reset code", body.String())
}

func (s *Sender) sendHTML(to, subject, body string) error {
	headers := map[string]string{
		"From":         s.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"UTF-8\"",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var message bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&message, "%s: %s\r\n", k, headers[k])
	}
	message.WriteString("\r\n" + body)

	// Without a host there is nowhere to deliver to, so log instead.
	if s.Host == "" {
		slog.Info("email: Mock email", "to", to, "subject", subject, "body", body)
		return nil
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	if err := s.send(addr, auth, s.From, []string{to}, message.Bytes()); err != nil {
		slog.Error("email: Failed to send", "to", to, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
