package dto

import (
	"time"

	chatDomain "github.com/allisson/chatkeys/internal/chat/domain"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
)

// ConversationResponse represents a conversation in API responses.
type ConversationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MapConversationToResponse converts a domain conversation to an API response.
func MapConversationToResponse(conversation *chatDomain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conversation.ID.String(),
		Name:      conversation.Name,
		CreatedAt: conversation.CreatedAt,
	}
}

// ListConversationsResponse represents a list of conversations in API responses.
type ListConversationsResponse struct {
	Data []ConversationResponse `json:"data"`
}

// MapConversationsToListResponse converts a slice of domain conversations to a list API response.
func MapConversationsToListResponse(conversations []*chatDomain.Conversation) ListConversationsResponse {
	responses := make([]ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		responses = append(responses, MapConversationToResponse(conversation))
	}
	return ListConversationsResponse{
		Data: responses,
	}
}

// ParticipantResponse represents a conversation member in API responses.
type ParticipantResponse struct {
	UserID      string    `json:"user_id"`
	UnreadCount int       `json:"unread_count"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ConversationDetailResponse represents a conversation with membership and
// activity data in API responses.
type ConversationDetailResponse struct {
	ConversationResponse
	Participants []ParticipantResponse `json:"participants"`
	UnreadCount  int                   `json:"unread_count"`
	LastMessage  *MessageResponse      `json:"last_message,omitempty"`
}

// MapConversationDetailToResponse converts a conversation detail to an API response.
func MapConversationDetailToResponse(detail *chatUseCase.ConversationDetail) ConversationDetailResponse {
	response := ConversationDetailResponse{
		ConversationResponse: MapConversationToResponse(detail.Conversation),
		Participants:         make([]ParticipantResponse, 0, len(detail.Participants)),
		UnreadCount:          detail.UnreadCount,
	}
	for _, participant := range detail.Participants {
		response.Participants = append(response.Participants, ParticipantResponse{
			UserID:      participant.UserID.String(),
			UnreadCount: participant.UnreadCount,
			JoinedAt:    participant.JoinedAt,
		})
	}
	if detail.LastMessage != nil {
		lastMessage := MapMessageToResponse(detail.LastMessage)
		response.LastMessage = &lastMessage
	}
	return response
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// MapMessageToResponse converts a domain message to an API response.
func MapMessageToResponse(message *chatDomain.Message) MessageResponse {
	return MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID.String(),
		AuthorID:       message.AuthorID.String(),
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	}
}

// ListMessagesResponse represents a page of messages in API responses.
type ListMessagesResponse struct {
	Data []MessageResponse `json:"data"`
}

// MapMessagesToListResponse converts a slice of domain messages to a list API response.
func MapMessagesToListResponse(messages []*chatDomain.Message) ListMessagesResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, MapMessageToResponse(message))
	}
	return ListMessagesResponse{
		Data: responses,
	}
}
