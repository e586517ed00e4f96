package oracle

import (
	"errors"
	"net"
	"strings"
	"syscall"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
)

// TransportError marks a failure to reach the oracle (network, quota,
// auth). It is distinct from a malformed response, which the extractors
// absorb: a TransportError means no extraction was produced at all.
type TransportError struct {
	Err        error
	StatusCode int
	Retryable  bool
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the error chain contains a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRetryable reports whether the error is a transport failure that is
// safe to retry (429, 5xx, network timeout). Auth and invalid-request
// failures are transport failures but not retryable.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// classifyTransport wraps an SDK call error as a TransportError, deciding
// retryability from the HTTP status when present and from network-level
// heuristics otherwise.
func classifyTransport(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &TransportError{
			Err:        eris.Wrap(err, "oracle: create message"),
			StatusCode: apiErr.StatusCode,
			Retryable:  isRetryableStatus(apiErr.StatusCode),
		}
	}
	return &TransportError{
		Err:       eris.Wrap(err, "oracle: create message"),
		Retryable: isTransientNetwork(err),
	}
}

// isRetryableStatus reports whether the HTTP status indicates a transient
// server-side issue.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		529: // Anthropic overloaded
		return true
	default:
		return false
	}
}

// isTransientNetwork matches network timeouts, connection resets and DNS
// failures, including ones wrapped by HTTP clients into plain strings.
func isTransientNetwork(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
