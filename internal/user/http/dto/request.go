// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// RegisterUserRequest contains the parameters for registering a new user.
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate checks if the register user request is valid.
func (r *RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128),
		),
	)
}

// ProvisionKeysRequest contains the parameters for keypair provisioning.
type ProvisionKeysRequest struct {
	UnlockSecret string `json:"unlock_secret"`
}

// Validate checks if the provision keys request is valid.
func (r *ProvisionKeysRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UnlockSecret,
			validation.Required,
			validation.Length(8, 128),
		),
	)
}
