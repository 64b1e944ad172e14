package ledger

import "errors"

var (
	// ErrNotFound indica que o betId referenciado não existe.
	ErrNotFound = errors.New("bet not found")

	// ErrAlreadyResolved indica tentativa de resolver aposta já resolvida.
	// Não é no-op: resolução é única e permanente.
	ErrAlreadyResolved = errors.New("bet has already been resolved")
)

// ValidationError indica pré-condição de entrada violada; sempre corrigível pelo caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
