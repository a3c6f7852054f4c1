package domain

import "errors"

// Sentinel errors form the stable error taxonomy of the service. Everything
// that crosses the service boundary wraps exactly one of these.
var (
	// ErrInvalidParameter covers malformed symbols, timeframes and limits.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSymbolNotFound means the exchange was reachable but does not list
	// the requested trading pair.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrExchangeNotSupported means the exchange id itself is unknown.
	ErrExchangeNotSupported = errors.New("exchange not supported")

	// ErrUpstream covers network faults, timeouts and exchange-side errors
	// that do not match a more specific kind.
	ErrUpstream = errors.New("upstream exchange error")
)

// ServiceError carries a taxonomy kind together with the exchange/symbol
// context it occurred in. It is produced by the error classifier and is the
// only error shape the transport layer has to understand.
type ServiceError struct {
	Kind     error // one of the sentinel errors above
	Message  string
	Exchange string
	Symbol   string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

// NewServiceError creates a classified error with context
func NewServiceError(kind error, message, exchange, symbol string) *ServiceError {
	return &ServiceError{
		Kind:     kind,
		Message:  message,
		Exchange: exchange,
		Symbol:   symbol,
	}
}

// IsServiceError checks if the error has already been classified
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}
