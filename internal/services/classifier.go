package services

import (
	"errors"
	"fmt"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

// Classify maps an upstream failure to a classified ServiceError with the
// exchange/symbol context it occurred in. Matching is on sentinel identity,
// never on message text; anything without a recognized kind becomes a
// generic upstream error that leaks no internal detail.
func Classify(exchangeID string, symbol domain.Symbol, err error) *domain.ServiceError {
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return domain.NewServiceError(domain.ErrInvalidParameter, err.Error(), exchangeID, symbol.String())

	case errors.Is(err, domain.ErrExchangeNotSupported):
		return domain.NewServiceError(
			domain.ErrExchangeNotSupported,
			fmt.Sprintf("exchange %q is not supported", exchangeID),
			exchangeID, symbol.String())

	case errors.Is(err, domain.ErrSymbolNotFound):
		return domain.NewServiceError(
			domain.ErrSymbolNotFound,
			fmt.Sprintf("symbol %q was not found on %s", symbol.String(), exchangeID),
			exchangeID, symbol.String())

	default:
		return domain.NewServiceError(
			domain.ErrUpstream,
			fmt.Sprintf("error communicating with exchange %q", exchangeID),
			exchangeID, symbol.String())
	}
}
