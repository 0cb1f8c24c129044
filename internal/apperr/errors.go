package apperr

// ValidationError is returned for requests the API rejects before reaching a
// backend. Param names the offending input when it is known.
type ValidationError struct {
	Message string
	Param   string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Param != "" {
		msg = e.Param + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// ForParam sets the name of the rejected input.
func (e *ValidationError) ForParam(param string) *ValidationError {
	e.Param = param
	return e
}
