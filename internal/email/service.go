package email

import (
	"fmt"
	"net/smtp"
)

// Service sends transactional mail through an SMTP relay.
type Service struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a mail service. Auth is only used when a username is
// set, so a local relay like MailHog works without credentials.
func NewService(host, port, username, password, from string) *Service {
	s := &Service{
		addr:     fmt.Sprintf("%s:%s", host, port),
		from:     from,
		sendMail: smtp.SendMail,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *Service) SendOrderConfirmation(to string, c OrderConfirmation) error {
	body, err := BuildOrderConfirmationBody(c)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return s.send(to, fmt.Sprintf("Order confirmation %s", c.OrderNumber), body)
}

func (s *Service) SendShippingNotice(to string, n ShippingNotice) error {
	body, err := BuildShippingNoticeBody(n)
	if err != nil {
		return fmt.Errorf("render shipping notice: %w", err)
	}
	return s.send(to, fmt.Sprintf("Your order %s has shipped", n.OrderNumber), body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	return s.sendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}
