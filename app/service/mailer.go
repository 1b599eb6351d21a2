package service

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
	"github.com/vibast-solutions/ms-go-academics/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	mailMaxAttempts  = 3
	mailRetryBackoff = 2 * time.Second
	mailDialTimeout  = 10 * time.Second
)

type deliveryRecorder interface {
	Append(ctx context.Context, record *entity.DeliveryRecord) error
}

// SendFunc performs one delivery attempt over the wire. Swapped out in tests.
type SendFunc func(ctx context.Context, cfg config.MailConfig, to string, msg []byte) error

type MailerOption func(*Mailer)

// Mailer renders a message template for an account and delivers it over SMTP
// with bounded retry. Every Send call leaves exactly one DeliveryRecord
// behind, success or failure, and never surfaces a transport error to the
// caller: account mutations must not fail because mail could not go out.
type Mailer struct {
	cfg         config.MailConfig
	baseURL     string
	templateDir string
	records     deliveryRecorder
	send        SendFunc
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

func NewMailer(cfg *config.Config, records deliveryRecorder, opts ...MailerOption) *Mailer {
	m := &Mailer{
		cfg:         cfg.Mail,
		baseURL:     cfg.BaseURL,
		templateDir: cfg.TemplateDir,
		records:     records,
		send:        sendSMTP,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithSendFunc(send SendFunc) MailerOption {
	return func(m *Mailer) {
		if send != nil {
			m.send = send
		}
	}
}

func WithClock(now func() time.Time) MailerOption {
	return func(m *Mailer) {
		if now != nil {
			m.now = now
		}
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) MailerOption {
	return func(m *Mailer) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// Send delivers the message of the given kind to the account's email.
// params overlay the base variables (username, email, date, base_url);
// caller values win on collision. The boolean is the delivery outcome.
func (m *Mailer) Send(ctx context.Context, account *entity.Account, kind entity.MessageKind, params map[string]string) bool {
	sentAt := m.now()

	subject, body, err := m.render(account, kind, params, sentAt)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": account.ID,
			"kind":       string(kind),
		}).Warn("Notification rendering failed")
		m.record(account, kind, sentAt, false, err.Error())
		return false
	}

	if !m.cfg.Configured() {
		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"kind":       string(kind),
		}).Warn("Mail transport not configured, notification dropped")
		m.record(account, kind, sentAt, false, "mail transport not configured")
		return false
	}

	msg := m.buildMessage(account.Email, subject, body)

	var lastErr error
	for attempt := 1; attempt <= mailMaxAttempts; attempt++ {
		lastErr = m.send(ctx, m.cfg, account.Email, msg)
		if lastErr == nil {
			break
		}

		logrus.WithError(lastErr).WithFields(logrus.Fields{
			"account_id": account.ID,
			"kind":       string(kind),
			"attempt":    attempt,
		}).Warn("Notification delivery attempt failed")

		if attempt == mailMaxAttempts {
			break
		}
		if err := m.sleep(ctx, mailRetryBackoff); err != nil {
			lastErr = fmt.Errorf("retry aborted: %w", err)
			break
		}
	}

	if lastErr != nil {
		m.record(account, kind, sentAt, false, lastErr.Error())
		return false
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"kind":       string(kind),
	}).Info("Notification delivered")
	m.record(account, kind, sentAt, true, "")
	return true
}

func (m *Mailer) render(account *entity.Account, kind entity.MessageKind, params map[string]string, sentAt time.Time) (string, string, error) {
	subject, ok := mailSubjects[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown message kind %q", kind)
	}

	vars := map[string]string{
		"username": account.Username,
		"email":    account.Email,
		"date":     sentAt.Format("2006-01-02"),
		"base_url": m.baseURL,
	}
	for name, value := range params {
		vars[name] = value
	}

	body := m.loadTemplate(kind)
	for name, value := range vars {
		body = strings.ReplaceAll(body, "{{"+name+"}}", value)
	}
	return subject, body, nil
}

// loadTemplate reads <templateDir>/<kind>.html, falling back to the built-in
// template when the resource is missing or unreadable.
func (m *Mailer) loadTemplate(kind entity.MessageKind) string {
	path := filepath.Join(m.templateDir, string(kind)+".html")
	content, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).WithField("template", path).Debug("Template resource unavailable, using built-in")
		return builtinTemplates[kind]
	}
	return string(content)
}

func (m *Mailer) buildMessage(to, subject, body string) []byte {
	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.New().String(), m.cfg.Host)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// record appends the audit row for one Send call. Audit failures are logged
// and swallowed; they never propagate. A detached context is used so a
// caller's cancellation cannot lose the record.
func (m *Mailer) record(account *entity.Account, kind entity.MessageKind, sentAt time.Time, succeeded bool, detail string) {
	record := &entity.DeliveryRecord{
		AccountID: account.ID,
		Kind:      kind,
		Succeeded: succeeded,
		SentAt:    sentAt,
	}
	if detail != "" {
		record.ErrorDetail = sql.NullString{String: detail, Valid: true}
	}

	auditCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.records.Append(auditCtx, record); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": account.ID,
			"kind":       string(kind),
		}).Error("Failed to append delivery record")
	}
}

// sendSMTP is the production SendFunc: dial (optionally TLS), authenticate
// when credentials are configured, send. The context aborts the dial promptly
// on cancellation.
func sendSMTP(ctx context.Context, cfg config.MailConfig, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: mailDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	if cfg.UseTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: cfg.Host})
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if cfg.Username != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(cfg.FromAddress); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
