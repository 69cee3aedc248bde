package errors

import "errors"

// Custom application errors
var (
	ErrReminderNotFound = errors.New("recordatorio no encontrado")                 // Reminder not found
	ErrInvalidDateTime  = errors.New("formato de fecha u hora inválido")           // Invalid date/time input
	ErrPersistence      = errors.New("no se pudo guardar el recordatorio")         // Store read/write failed
	ErrScheduling       = errors.New("no se pudo programar la notificación")       // Scheduler schedule/cancel failed
	ErrCorruptStore     = errors.New("los recordatorios guardados están dañados")  // Stored collection could not be decoded
	ErrNotification     = errors.New("no se pudo enviar la notificación")          // Delivery channel failed
	ErrInternalServer   = errors.New("se produjo un error interno del servidor")   // Generic internal error
)

// ValidationError is returned when reminder input is rejected before any
// collaborator is touched. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
