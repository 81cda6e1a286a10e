package services

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/evenground/evenground-api/internal/config"
)

const mimeBoundary = "evenground-alt"

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) IsConfigured() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != "" && m.cfg.From != ""
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	if !m.IsConfigured() {
		return ErrMailerDisabled
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", m.cfg.From, to, subject)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", mimeBoundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", mimeBoundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES v2.
type SESMailer struct {
	client    sesAPI
	fromEmail string
	fromName  string
}

func NewSESMailer(ctx context.Context, cfg config.SESConfig) (*SESMailer, error) {
	if cfg.FromEmail == "" {
		return &SESMailer{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client:    sesv2.NewFromConfig(awsCfg),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

func (m *SESMailer) IsConfigured() bool {
	return m.client != nil && m.fromEmail != ""
}

func (m *SESMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !m.IsConfigured() {
		return ErrMailerDisabled
	}

	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

// NewMailer picks the delivery backend named by MAIL_PROVIDER. With no
// provider named, SMTP wins when configured, then SES. The result may be
// unconfigured, in which case Send returns ErrMailerDisabled.
func NewMailer(ctx context.Context, cfg *config.Config) (Mailer, error) {
	smtpMailer := NewSMTPMailer(cfg.SMTP)

	switch cfg.MailProvider {
	case config.MailProviderSMTP:
		return smtpMailer, nil
	case config.MailProviderSES:
		return NewSESMailer(ctx, cfg.SES)
	}

	if smtpMailer.IsConfigured() {
		return smtpMailer, nil
	}
	if cfg.SES.FromEmail != "" {
		return NewSESMailer(ctx, cfg.SES)
	}
	return smtpMailer, nil
}

type email struct {
	Subject string
	HTML    string
	Text    string
}

func inviteEmail(inviterName, link string) email {
	who := "Your co-parent"
	if inviterName != "" {
		who = inviterName
	}
	return email{
		Subject: "You've been invited to EvenGround",
		HTML: fmt.Sprintf(`
		<html>
		<body>
			<h2>You've been invited to join EvenGround</h2>
			<p><strong>%s</strong> invited you to coordinate schedules and requests together.</p>
			<p><a href="%s">Join Family</a></p>
			<p>If the button does not work, paste this link into your browser:<br>%s</p>
		</body>
		</html>
	`, html.EscapeString(who), html.EscapeString(link), html.EscapeString(link)),
		Text: fmt.Sprintf("%s invited you to join EvenGround.\n\nJoin your family: %s\n", who, link),
	}
}

func magicLinkEmail(link string, ttl time.Duration) email {
	minutes := int(ttl.Minutes())
	return email{
		Subject: "Your EvenGround sign-in link",
		HTML: fmt.Sprintf(`
		<html>
		<body>
			<h2>Sign in to EvenGround</h2>
			<p><a href="%s">Sign in</a></p>
			<p>This link expires in %d minutes and can be used once.</p>
			<p>If you didn't ask to sign in, you can ignore this email.</p>
		</body>
		</html>
	`, html.EscapeString(link), minutes),
		Text: fmt.Sprintf("Sign in to EvenGround: %s\n\nThis link expires in %d minutes and can be used once.\n", link, minutes),
	}
}
