package services

import (
	"errors"
	"fmt"

	"quill/app/repositories"

	"github.com/go-playground/validator/v10"
)

// Error kinds surfaced to callers. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
	// ErrTooLarge accompanies ErrValidation when input exceeds what the store can hold.
	ErrTooLarge = errors.New("too large")
)

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed on %q", ErrValidation, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func notFound(kind string, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// classify maps a repository error onto the service error kinds.
// Errors that already carry a kind pass through unchanged.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, op, err)
	case errors.Is(err, repositories.ErrValueTooLarge):
		return fmt.Errorf("%w: %w: %s: %v", ErrValidation, ErrTooLarge, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
	}
}
