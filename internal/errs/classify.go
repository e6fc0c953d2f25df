package errs

import "fmt"

// ClassifyHTTP categorizes an HTTP failure for retry policy:
// 4xx client errors (except 408/429) are irrecoverable, 5xx and
// network-level errors are recoverable.
func ClassifyHTTP(statusCode int, body string, underlying error) *ClassifiedError {
	return &ClassifiedError{
		Category:   httpCategory(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlying,
	}
}

func httpCategory(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes: be conservative and retry.
		return Recoverable
	}
}

// NewHTTPError builds a classified error for an HTTP failure.
func NewHTTPError(statusCode int, body, operation string) *ClassifiedError {
	return ClassifyHTTP(statusCode, body, fmt.Errorf("%s failed: HTTP %d", operation, statusCode))
}

// NewNetworkError builds a classified error for a transport-level failure.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
