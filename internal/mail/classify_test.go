package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"os"
	"strings"
	"syscall"
	"testing"
)

// timeoutError implements net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode string
	}{
		{
			name:     "auth rejected reply",
			err:      &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"},
			wantKind: KindAuth,
			wantCode: "EAUTH",
		},
		{
			name:     "connection refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			wantKind: KindConnection,
			wantCode: "ECONNREFUSED",
		},
		{
			name:     "host not found",
			err:      &net.DNSError{Err: "no such host", Name: "smtp.example.invalid", IsNotFound: true},
			wantKind: KindDNS,
			wantCode: "ENOTFOUND",
		},
		{
			name:     "dial timeout",
			err:      timeoutError{},
			wantKind: KindConnection,
			wantCode: "ETIMEDOUT",
		},
		{
			name:     "starttls required",
			err:      &textproto.Error{Code: 530, Msg: "5.7.0 Must issue a STARTTLS command first"},
			wantKind: KindTLS,
			wantCode: "ETLS",
		},
		{
			name:     "recipient rejected",
			err:      &textproto.Error{Code: 550, Msg: "5.1.1 No such user"},
			wantKind: KindServer,
			wantCode: "EENVELOPE",
		},
		{
			name:     "service closing",
			err:      &textproto.Error{Code: 421, Msg: "4.7.0 Try again later, closing connection"},
			wantKind: KindConnection,
			wantCode: "ECONNECTION",
		},
		{
			name:     "generic permanent reply",
			err:      &textproto.Error{Code: 554, Msg: "Transaction failed"},
			wantKind: KindServer,
			wantCode: "EENVELOPE",
		},
		{
			name:     "unexpected transient reply",
			err:      &textproto.Error{Code: 451, Msg: "Requested action aborted"},
			wantKind: KindProtocol,
			wantCode: "EPROTOCOL",
		},
		{
			name:     "tls record header",
			err:      tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"},
			wantKind: KindTLS,
			wantCode: "ETLS",
		},
		{
			name:     "connection lost mid-session",
			err:      fmt.Errorf("reading greeting: %w", io.EOF),
			wantKind: KindConnection,
			wantCode: "ECONNECTION",
		},
		{
			name:     "read failure",
			err:      &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")},
			wantKind: KindStream,
			wantCode: "ESTREAM",
		},
		{
			name:     "missing configuration",
			err:      ErrNoConfig,
			wantKind: KindConfig,
			wantCode: "ECONFIG",
		},
		{
			name:     "incomplete configuration",
			err:      fmt.Errorf("load transport: %w", ErrIncompleteConfig),
			wantKind: KindConfig,
			wantCode: "ECONFIG",
		},
		{
			name:     "net/smtp auth error string",
			err:      errors.New("smtp: server doesn't support AUTH"),
			wantKind: KindAuth,
			wantCode: "EAUTH",
		},
		{
			name:     "anything else",
			err:      errors.New("week-old sandwich"),
			wantKind: KindUnknown,
			wantCode: "EUNKNOWN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify(%v).Kind = %q, want %q", tt.err, got.Kind, tt.wantKind)
			}
			if got.Details.Code != tt.wantCode {
				t.Errorf("Classify(%v).Details.Code = %q, want %q", tt.err, got.Details.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Errorf("Classify(%v) produced an empty message", tt.err)
			}
		})
	}
}

// The auth message must mention authentication so an operator reading the
// audit log can act without decoding reply codes.
func TestClassifyAuthMessageMentionsAuthentication(t *testing.T) {
	got := Classify(&textproto.Error{Code: 535, Msg: "5.7.8 Authentication credentials invalid"})
	if !strings.Contains(strings.ToLower(got.Message), "authentication") {
		t.Errorf("auth message %q does not mention authentication", got.Message)
	}
}

func TestClassifyPreservesReplyDetails(t *testing.T) {
	got := Classify(&textproto.Error{Code: 550, Msg: "5.1.1 No such user"})
	if got.Details.ResponseCode != 550 {
		t.Errorf("ResponseCode = %d, want 550", got.Details.ResponseCode)
	}
	if got.Details.Response != "5.1.1 No such user" {
		t.Errorf("Response = %q, want raw reply text", got.Details.Response)
	}
}
