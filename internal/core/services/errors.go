package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// providerError wraps err so that errors.Is(err, domain.ErrProvider) holds.
func providerError(op string, err error) error {
	if errors.Is(err, domain.ErrProvider) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProvider, err)
}
