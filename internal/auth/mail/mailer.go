package mail

import (
	"context"
	"fmt"

	"github.com/recipic-shop/recipic/pkg/slogx"
	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers account emails. Implementations must be safe for
// concurrent use; signup sends activation mail from request goroutines.
type Mailer interface {
	SendActivationEmail(ctx context.Context, to, token string) error
}

// SMTPConfig carries the delivery settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// FrontendURL is the base the activation link points at, e.g.
	// "http://local.recipic.shop:3000".
	FrontendURL string
}

// SMTPMailer sends real mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *gomail.Client
	cfg    SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: create smtp client: %w", err)
	}

	return &SMTPMailer{client: client, cfg: cfg}, nil
}

func (m *SMTPMailer) SendActivationEmail(ctx context.Context, to, token string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail: set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail: set to: %w", err)
	}

	link := fmt.Sprintf("%s/activate?token=%s", m.cfg.FrontendURL, token)

	msg.Subject("Activate your Recipic account")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Welcome to Recipic!\n\n"+
			"Open the link below within 30 minutes to activate your account:\n\n"+
			"%s\n\n"+
			"If you didn't sign up, you can ignore this email.\n", link))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send activation email: %w", err)
	}
	return nil
}

// LogMailer logs the activation link instead of delivering it. Used in
// development where no SMTP relay is configured.
type LogMailer struct {
	FrontendURL string
}

func (m *LogMailer) SendActivationEmail(ctx context.Context, to, token string) error {
	slogx.FromContext(ctx).Info("activation email (dev mode, not sent)",
		"to", to,
		"link", fmt.Sprintf("%s/activate?token=%s", m.FrontendURL, token),
	)
	return nil
}
