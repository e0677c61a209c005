package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies why an operation failed. Adapters set it where the error
// originates so the executor never has to guess from message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindRateLimited
	KindServer
	KindTemporary
	KindMalformed
	KindAuth
	KindUnsupported
	KindValidation
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindNetwork:     "network",
	KindTimeout:     "timeout",
	KindRateLimited: "rate_limited",
	KindServer:      "server",
	KindTemporary:   "temporary",
	KindMalformed:   "malformed",
	KindAuth:        "auth",
	KindUnsupported: "unsupported",
	KindValidation:  "validation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Retryable reports whether failures of this kind are worth another attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimited, KindServer, KindTemporary:
		return true
	default:
		return false
	}
}

// Error is the structured failure returned by source adapters.
type Error struct {
	Kind       Kind
	StatusCode int // HTTP-equivalent status, 0 when not applicable
	Op         string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports the retry capability carried by the error kind.
func (e *Error) Retryable() bool { return e.Kind.Retryable() }

// Temporary marks err as a transient condition.
func Temporary(op string, err error) error {
	return &Error{Kind: KindTemporary, Op: op, Err: err}
}

// Terminal wraps err with a non-retryable kind.
func Terminal(op string, kind Kind, err error) error {
	if kind.Retryable() {
		kind = KindUnknown
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// FromStatus builds an Error for an unsuccessful HTTP-style status code.
// body is included (truncated) to help debugging.
func FromStatus(op string, code int, body string) error {
	if len(body) > 256 {
		body = body[:256]
	}
	var kind Kind
	switch {
	case code == http.StatusTooManyRequests:
		kind = KindRateLimited
	case code == http.StatusRequestTimeout:
		kind = KindTimeout
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = KindAuth
	case code >= 500:
		kind = KindServer
	default:
		kind = KindMalformed
	}
	var err error
	if body != "" {
		err = errors.New(body)
	}
	return &Error{Kind: kind, StatusCode: code, Op: op, Err: err}
}

// FromTransport classifies an error returned by an HTTP client before any
// response was received.
func FromTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	if isConnectionFault(err) {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	return &Error{Kind: KindUnknown, Op: op, Err: err}
}

func isConnectionFault(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
