package models

import (
	"errors"
	"fmt"
)

// ModelResponse is the text returned by the language model.
type ModelResponse struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// ServiceError reports a failed call to an external service. Message is
// the provider's own text, passed through unchanged.
type ServiceError struct {
	Service    string `json:"service"`
	StatusCode int    `json:"statusCode,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Service, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err as a ServiceError for service.
func NewServiceError(service string, err error) *ServiceError {
	return &ServiceError{Service: service, Message: err.Error(), Err: err}
}

// AsServiceError returns the ServiceError in err's chain, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
