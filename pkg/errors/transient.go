package errors

import (
	"context"
	"net"
	"strings"
)

// transientMarkers mirrors the failure-message sniffing used when an error
// carries no typed code, e.g. a submit function wrapping a raw transport error.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"temporary failure",
	"service unavailable",
	"bad gateway",
	"econnreset",
	"eof",
}

// Retryable reports whether the error belongs to the transient class that a
// queue pass or HTTP retry loop may safely attempt again.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if typed := As(err); typed != nil {
		return MetadataFor(typed.Code()).Retryable
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	if err == context.DeadlineExceeded {
		return true
	}
	return LooksTransient(err.Error())
}

// LooksTransient sniffs an error message for network/timeout vocabulary.
func LooksTransient(message string) bool {
	msg := strings.ToLower(message)
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
