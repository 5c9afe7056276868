package mailer

import (
	"context"
	"fmt"
	"io"
	"procomp-service/config"
	"procomp-service/pkg/logger"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

// Attachment 附件 (PDF)
type Attachment struct {
	Filename string
	Content  []byte
}

// Message 一封 HTML 郵件
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL

	return &SMTPMailer{
		dialer: d,
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("mail without recipient: %q", msg.Subject)
	}

	out := mail.NewMessage()
	out.SetHeader("From", m.from)
	out.SetHeader("To", msg.To)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		content := a.Content
		out.Attach(a.Filename, mail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(out); err != nil {
		logger.WithComponent("mailer").Error("send failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	logger.WithComponent("mailer").Info("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
