// Package mail sends booking notifications over SMTP using the stored
// transport configuration, and classifies delivery failures into a fixed
// taxonomy shared by every call site.
package mail

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"syscall"
)

// Kind is one classified failure category.
type Kind string

// The transport error taxonomy. Every delivery failure maps to exactly one
// of these; the admin configuration-test tool surfaces them, end users never
// see them.
const (
	KindServer     Kind = "server"     // sender or recipients rejected
	KindConnection Kind = "connection" // could not establish, refused, timed out or lost
	KindAuth       Kind = "auth"       // credentials rejected
	KindTLS        Kind = "tls"        // negotiation failure, including STARTTLS-required
	KindDNS        Kind = "dns"        // host resolution failure
	KindStream     Kind = "stream"     // read or write failure mid-session
	KindProtocol   Kind = "protocol"   // unexpected server sequence
	KindConfig     Kind = "config"     // stored configuration missing or invalid
	KindUnknown    Kind = "unknown"    // fallback
)

// Sentinels for configuration-level failures, classified as KindConfig.
var (
	ErrNoConfig         = errors.New("email configuration not found")
	ErrIncompleteConfig = errors.New("incomplete SMTP configuration")
)

// Details carries the raw transport facts preserved in the audit log.
// Code uses the conventional short identifiers (EAUTH, ECONNREFUSED, ...)
// so existing log tooling keeps working.
type Details struct {
	Code         string `json:"code"`
	Command      string `json:"command,omitempty"`
	ResponseCode int    `json:"responseCode,omitempty"`
	Response     string `json:"response,omitempty"`
}

// Classified is the outcome of classifying one transport error.
type Classified struct {
	Kind    Kind
	Message string
	Details Details
}

// Error implements error so a Classified can travel up the call chain.
func (c Classified) Error() string { return c.Message }

// Classify maps a transport error onto the taxonomy. It is the single
// classification point for booking dispatch, the configuration test and the
// test-email endpoint; the wording here is what operators see.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Kind: KindUnknown, Message: "unknown SMTP error occurred"}
	}

	var already Classified
	if errors.As(err, &already) {
		return already
	}

	if errors.Is(err, ErrNoConfig) || errors.Is(err, ErrIncompleteConfig) {
		return Classified{
			Kind:    KindConfig,
			Message: "Email configuration is missing or incomplete. Please check the stored SMTP settings.",
			Details: Details{Code: "ECONFIG", Response: err.Error()},
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Classified{
			Kind:    KindDNS,
			Message: "Host not found. Please check the SMTP host name.",
			Details: Details{Code: "ENOTFOUND", Response: dnsErr.Error()},
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return Classified{
			Kind:    KindConnection,
			Message: "Connection refused. Please check SMTP host and port settings.",
			Details: Details{Code: "ECONNREFUSED", Response: err.Error()},
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Classified{
			Kind:    KindConnection,
			Message: "Connection timed out. Please check SMTP host and port settings.",
			Details: Details{Code: "ETIMEDOUT", Response: err.Error()},
		}
	}

	if c, ok := classifyTLS(err); ok {
		return c
	}

	// An SMTP reply outside the success range surfaces as a textproto error.
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return classifyReply(tpErr)
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Classified{
			Kind:    KindConnection,
			Message: "Connection error. The connection was lost or could not be established.",
			Details: Details{Code: "ECONNECTION", Response: err.Error()},
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "read" || opErr.Op == "write" {
			return Classified{
				Kind:    KindStream,
				Message: "Stream error. Failed to read or write data.",
				Details: Details{Code: "ESTREAM", Response: err.Error()},
			}
		}
		return Classified{
			Kind:    KindConnection,
			Message: "Connection error. The connection was lost or could not be established.",
			Details: Details{Code: "ECONNECTION", Response: err.Error()},
		}
	}

	// net/smtp wraps some auth failures in plain errors.
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "auth") {
		return Classified{
			Kind:    KindAuth,
			Message: "Authentication failed. Please check SMTP username and password.",
			Details: Details{Code: "EAUTH", Response: err.Error()},
		}
	}

	return Classified{
		Kind:    KindUnknown,
		Message: err.Error(),
		Details: Details{Code: "EUNKNOWN", Response: err.Error()},
	}
}

// classifyTLS recognises TLS negotiation and certificate failures.
func classifyTLS(err error) (Classified, bool) {
	tlsMsg := "TLS negotiation failed. Please check TLS settings."
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return Classified{Kind: KindTLS, Message: tlsMsg, Details: Details{Code: "ETLS", Response: recErr.Error()}}, true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return Classified{Kind: KindTLS, Message: tlsMsg, Details: Details{Code: "ETLS", Response: certErr.Error()}}, true
	}
	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	var invErr x509.CertificateInvalidError
	if errors.As(err, &hostErr) || errors.As(err, &authErr) || errors.As(err, &invErr) {
		return Classified{Kind: KindTLS, Message: tlsMsg, Details: Details{Code: "ETLS", Response: err.Error()}}, true
	}
	if strings.Contains(err.Error(), "tls:") {
		return Classified{Kind: KindTLS, Message: tlsMsg, Details: Details{Code: "ETLS", Response: err.Error()}}, true
	}
	return Classified{}, false
}

// classifyReply maps an SMTP status reply onto the taxonomy.
func classifyReply(tpErr *textproto.Error) Classified {
	d := Details{ResponseCode: tpErr.Code, Response: tpErr.Msg}

	switch {
	case strings.Contains(strings.ToUpper(tpErr.Msg), "STARTTLS"):
		d.Code = "ETLS"
		return Classified{
			Kind:    KindTLS,
			Message: "STARTTLS is required. Please enable TLS in your configuration.",
			Details: d,
		}
	case tpErr.Code == 535 || tpErr.Code == 534 || tpErr.Code == 538 || tpErr.Code == 454:
		d.Code = "EAUTH"
		return Classified{
			Kind:    KindAuth,
			Message: "Authentication failed. Please check SMTP username and password.",
			Details: d,
		}
	case tpErr.Code == 450 || tpErr.Code == 452 || tpErr.Code == 550 ||
		tpErr.Code == 551 || tpErr.Code == 552 || tpErr.Code == 553:
		d.Code = "EENVELOPE"
		return Classified{
			Kind:    KindServer,
			Message: "SMTP server rejected the sender or recipients.",
			Details: d,
		}
	case tpErr.Code == 421:
		d.Code = "ECONNECTION"
		return Classified{
			Kind:    KindConnection,
			Message: "Connection error. The connection was lost or could not be established.",
			Details: d,
		}
	case tpErr.Code >= 500 && tpErr.Code < 600:
		d.Code = "EENVELOPE"
		return Classified{
			Kind:    KindServer,
			Message: "SMTP server rejected the request. Please check server settings.",
			Details: d,
		}
	default:
		d.Code = "EPROTOCOL"
		return Classified{
			Kind:    KindProtocol,
			Message: "Protocol error. Server responded with an unexpected sequence.",
			Details: d,
		}
	}
}
