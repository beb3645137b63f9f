package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"gopkg.in/gomail.v2"
)

// Context tags attached to audit-log entries so a failure can be traced to
// the message that caused it.
const (
	ContextCustomerConfirmation = "customer_confirmation"
	ContextAdminNotification    = "admin_notification"
)

// ConfigStore reads the stored SMTP configuration.
type ConfigStore interface {
	GetEmailConfig(ctx context.Context) (*model.EmailConfig, error)
}

// FailureLog records classified delivery failures.
type FailureLog interface {
	InsertEmailLog(ctx context.Context, entry model.EmailLog) error
}

// sendFunc delivers one message over a transport built from cfg.
// Tests replace it to avoid real SMTP traffic.
type sendFunc func(cfg *model.EmailConfig, msg *gomail.Message) error

// Mailer sends booking notifications and test emails. The transport is
// rebuilt from stored configuration on every call — correctness over
// throughput, so credential changes apply immediately.
type Mailer struct {
	configs   ConfigStore
	logs      FailureLog
	adminAddr string
	send      sendFunc
	verify    func(cfg *model.EmailConfig) error
}

// New constructs a Mailer. adminAddr receives the admin notification copy
// of every booking.
func New(configs ConfigStore, logs FailureLog, adminAddr string) *Mailer {
	return &Mailer{
		configs:   configs,
		logs:      logs,
		adminAddr: adminAddr,
		send:      smtpSend,
		verify:    smtpVerify,
	}
}

// DispatchResult is the tagged outcome of one booking dispatch. The two
// sends are independent; either failure is enough for the orchestrator to
// abort, but the admin tooling can still tell them apart.
type DispatchResult struct {
	Customer error
	Admin    error
}

// Err collapses the result for callers that only need pass/fail. The
// customer failure wins when both sends failed; both are already logged.
func (r DispatchResult) Err() error {
	if r.Customer != nil {
		return r.Customer
	}
	return r.Admin
}

// DispatchBookingEmails sends the customer confirmation and the admin
// notification concurrently and awaits both. Each failure is classified and
// written to the audit log before being reported in the result.
func (m *Mailer) DispatchBookingEmails(ctx context.Context, course *model.Course, booking model.BookingRequest, code string) DispatchResult {
	cfg, err := m.fetchConfig(ctx)
	if err != nil {
		// Neither message can be attempted; log one entry per message so
		// the audit trail still shows what was owed.
		return DispatchResult{
			Customer: m.fail(ctx, err, ContextCustomerConfirmation, "customer confirmation"),
			Admin:    m.fail(ctx, err, ContextAdminNotification, "admin notification"),
		}
	}

	data := newBookingEmailData(cfg, course, booking, code, time.Now())

	customer := newMessage(cfg, booking.Email,
		fmt.Sprintf("Booking Confirmation - %s", course.Title),
		renderBody(customerBodyTmpl, data))
	admin := newMessage(cfg, m.adminAddr,
		fmt.Sprintf("New Course Booking - %s", course.Title),
		renderBody(adminBodyTmpl, data))

	var res DispatchResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := m.send(cfg, customer); err != nil {
			res.Customer = m.fail(ctx, err, ContextCustomerConfirmation, "customer confirmation")
		}
	}()
	go func() {
		defer wg.Done()
		if err := m.send(cfg, admin); err != nil {
			res.Admin = m.fail(ctx, err, ContextAdminNotification, "admin notification")
		}
	}()
	wg.Wait()
	return res
}

// VerifyConfig fetches the stored configuration and performs the SMTP
// handshake without sending anything. Callers classify the returned error.
func (m *Mailer) VerifyConfig(ctx context.Context) error {
	cfg, err := m.fetchConfig(ctx)
	if err != nil {
		return err
	}
	return m.verify(cfg)
}

// SendTest sends an arbitrary message using the stored configuration.
// Test sends are not written to the audit log.
func (m *Mailer) SendTest(ctx context.Context, req model.TestEmailRequest) error {
	cfg, err := m.fetchConfig(ctx)
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(cfg.FromEmail, cfg.FromName))
	msg.SetHeader("To", req.To)
	msg.SetHeader("Subject", req.Subject)
	msg.SetBody("text/plain", req.Text)
	if req.HTML != "" {
		msg.AddAlternative("text/html", req.HTML)
	}
	if err := m.send(cfg, msg); err != nil {
		return Classify(err)
	}
	return nil
}

// fetchConfig reads the configuration fresh from storage. No caching: the
// admin UI may have changed credentials since the previous send.
func (m *Mailer) fetchConfig(ctx context.Context) (*model.EmailConfig, error) {
	cfg, err := m.configs.GetEmailConfig(ctx)
	if err != nil {
		// A failed fetch is a configuration problem from the caller's
		// point of view, whatever the storage-level cause.
		return nil, fmt.Errorf("%w: %v", ErrNoConfig, err)
	}
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, ErrIncompleteConfig
	}
	return cfg, nil
}

// fail classifies err, writes one audit entry tagged with contextTag and
// returns the error the orchestrator surfaces. A failed audit write must
// not mask the original failure, so it is only logged.
func (m *Mailer) fail(ctx context.Context, err error, contextTag, what string) error {
	c := Classify(err)
	entry := model.EmailLog{
		Kind:         string(c.Kind),
		Message:      c.Message,
		Code:         c.Details.Code,
		Command:      c.Details.Command,
		ResponseCode: c.Details.ResponseCode,
		Response:     c.Details.Response,
		Context:      contextTag,
	}
	if logErr := m.logs.InsertEmailLog(ctx, entry); logErr != nil {
		log.Printf("mail: recording %s failure: %v", contextTag, logErr)
	}
	return fmt.Errorf("failed to send %s email: %s", what, c.Message)
}

func newMessage(cfg *model.EmailConfig, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(cfg.FromEmail, cfg.FromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// dialer builds a gomail transport from the stored configuration.
// smtp_tls_ciphers is stored for operator reference only; crypto/tls
// selects cipher suites itself.
func dialer(cfg *model.EmailConfig) *gomail.Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Secure
	if cfg.TLSEnabled {
		d.TLSConfig = &tls.Config{
			ServerName:         cfg.Host,
			MinVersion:         minTLSVersion(cfg.TLSMinVersion),
			InsecureSkipVerify: !cfg.TLSRejectUnauthorized,
		}
	}
	return d
}

func minTLSVersion(v string) uint16 {
	switch v {
	case "TLSv1":
		return tls.VersionTLS10
	case "TLSv1.1":
		return tls.VersionTLS11
	case "TLSv1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

func smtpSend(cfg *model.EmailConfig, msg *gomail.Message) error {
	return dialer(cfg).DialAndSend(msg)
}

// smtpVerify performs the handshake the admin config test relies on:
// connect, greet, authenticate, quit.
func smtpVerify(cfg *model.EmailConfig) error {
	sc, err := dialer(cfg).Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}
