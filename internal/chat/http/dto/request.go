// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// CreateConversationRequest contains the parameters for creating a conversation.
type CreateConversationRequest struct {
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participant_ids"`
}

// Validate checks if the create conversation request is valid.
func (r *CreateConversationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.ParticipantIDs,
			validation.Each(validation.Required, customValidation.NotBlank),
		),
	)
}

// AddParticipantRequest contains the parameters for adding a member.
type AddParticipantRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks if the add participant request is valid.
func (r *AddParticipantRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// SendMessageRequest contains the parameters for sending a message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate checks if the send message request is valid.
func (r *SendMessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content,
			validation.Required,
			validation.Length(1, 65535),
		),
	)
}
