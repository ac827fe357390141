package usecase

import (
	"net/http"
	"strings"
	"time"

	"github.com/supchaser/pdftoxl/internal/utils/errs"
)

// retryKeywords are matched case-insensitively against service error text.
var retryKeywords = []string{"invalid", "incomplete", "empty", "timeout", "llm"}

var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// RetryPolicy bounds the attempts made for one file. Connectivity failures
// have their own budget and base delay; zero values fall back to the
// general ones.
type RetryPolicy struct {
	MaxAttempts             int
	BaseDelay               time.Duration
	ConnectivityMaxAttempts int
	ConnectivityBaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:             3,
		BaseDelay:               time.Second,
		ConnectivityMaxAttempts: 3,
		ConnectivityBaseDelay:   time.Second,
	}
}

func (p RetryPolicy) Attempts(kind errs.Kind) int {
	n := p.MaxAttempts
	if kind == errs.KindConnectivity && p.ConnectivityMaxAttempts > 0 {
		n = p.ConnectivityMaxAttempts
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Delay is the wait before attempt+1: base, 2*base, 4*base, ...
func (p RetryPolicy) Delay(kind errs.Kind, attempt int) time.Duration {
	base := p.BaseDelay
	if kind == errs.KindConnectivity && p.ConnectivityBaseDelay > 0 {
		base = p.ConnectivityBaseDelay
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 20 {
		attempt = 20
	}
	return base << attempt
}

func Retryable(kind errs.Kind) bool {
	switch kind {
	case errs.KindConnectivity, errs.KindEmptyResult, errs.KindTransient:
		return true
	}
	return false
}

// ClassifyServiceFailure sorts a non-2xx response into transient or permanent.
// An explicit hint from the service wins; then the status allow-list; then
// the keyword match on the reason.
func ClassifyServiceFailure(statusCode int, reason string, hint *bool) errs.Kind {
	if hint != nil {
		if *hint {
			return errs.KindTransient
		}
		return errs.KindPermanent
	}
	if retryableStatusCodes[statusCode] || MatchesRetryKeyword(reason) {
		return errs.KindTransient
	}
	return errs.KindPermanent
}

func MatchesRetryKeyword(reason string) bool {
	lower := strings.ToLower(reason)
	for _, kw := range retryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
