package smtp

import (
	"context"

	"github.com/robertarktes/tourinfo/internal/domain"
	"gopkg.in/mail.v2"
)

// Client is the secondary delivery channel: plain SMTP through the
// operator's own relay. SMTP has no message ids, so Deliver returns "".
type Client struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewClient(host string, port int, user, pass, from string) *Client {
	return &Client{host: host, port: port, user: user, pass: pass, from: from}
}

func (c *Client) Name() string {
	return "smtp"
}

func (c *Client) Deliver(ctx context.Context, msg domain.DeliveryMessage) (string, error) {
	m := mail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/html", msg.HTML)

	dialer := mail.NewDialer(c.host, c.port, c.user, c.pass)
	if err := dialer.DialAndSend(m); err != nil {
		return "", domain.MarkConnection(err)
	}
	return "", nil
}
