package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in logs and metrics.
type ErrorCategory string

const (
	ErrorCategoryConfig           ErrorCategory = "config"
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryUpstream4xx      ErrorCategory = "upstream_4xx"
	ErrorCategoryUpstream5xx      ErrorCategory = "upstream_5xx"
	ErrorCategoryParsing          ErrorCategory = "parsing"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps an error returned by GetCurrentWeather to an ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrAPIKeyMissing) {
		return ErrorCategoryConfig
	}

	if errors.Is(err, ErrLocationNotFound) {
		return ErrorCategoryLocationNotFound
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode >= 500 {
			return ErrorCategoryUpstream5xx
		}
		return ErrorCategoryUpstream4xx
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	if errors.Is(err, ErrUpstreamUnavailable) {
		if strings.Contains(err.Error(), "timeout") {
			return ErrorCategoryTimeout
		}
		return ErrorCategoryNetwork
	}

	if strings.Contains(err.Error(), "parse") || strings.Contains(err.Error(), "unmarshal") {
		return ErrorCategoryParsing
	}

	return ErrorCategoryUnknown
}
