// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// LoginRequest contains the credentials presented at login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 128),
		),
	)
}
