// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/printops/printserver/internal/validation"
)

// Credentials carries the claimed identity every privileged call must present.
// Password is consumed by the credential check and never echoed back, logged,
// or forwarded to the backend.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credential fields are present.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, customValidation.NotBlank),
		validation.Field(&c.Password, validation.Required),
	)
}

// PrintRequest submits a file to a printer.
type PrintRequest struct {
	Credentials
	Filename string `json:"filename"`
	Printer  string `json:"printer"`
}

// Validate checks if the print request is valid.
func (r *PrintRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Filename, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Printer, validation.Required, customValidation.NotBlank),
	)
}

// QueueRequest lists the jobs queued on a printer.
type QueueRequest struct {
	Credentials
	Printer string `json:"printer"`
}

// Validate checks if the queue request is valid.
func (r *QueueRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Printer, validation.Required, customValidation.NotBlank),
	)
}

// TopQueueRequest moves a job to the head of a printer's queue.
type TopQueueRequest struct {
	Credentials
	Printer string `json:"printer"`
	Job     int    `json:"job"`
}

// Validate checks if the top-queue request is valid.
func (r *TopQueueRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Printer, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Job, validation.Required, validation.Min(1)),
	)
}

// ServiceRequest covers the operations that act on the service as a whole:
// start, stop, and restart.
type ServiceRequest struct {
	Credentials
}

// Validate checks if the service request is valid.
func (r *ServiceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
	)
}

// StatusRequest reports the status of a printer.
type StatusRequest struct {
	Credentials
	Printer string `json:"printer"`
}

// Validate checks if the status request is valid.
func (r *StatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Printer, validation.Required, customValidation.NotBlank),
	)
}

// ReadConfigRequest reads a configuration parameter.
type ReadConfigRequest struct {
	Credentials
	Parameter string `json:"parameter"`
}

// Validate checks if the read-config request is valid.
func (r *ReadConfigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Parameter, validation.Required, customValidation.NotBlank),
	)
}

// SetConfigRequest sets a configuration parameter. An empty value is allowed;
// it clears the parameter to the empty string.
type SetConfigRequest struct {
	Credentials
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// Validate checks if the set-config request is valid.
func (r *SetConfigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Credentials),
		validation.Field(&r.Parameter, validation.Required, customValidation.NotBlank),
	)
}
