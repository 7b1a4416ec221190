package dto

import (
	"time"

	"iot-console-be/pkg/query/conversation"

	"github.com/google/uuid"
)

type CreateChatSessionRequest struct {
	Title string `json:"title" validate:"required"`
}

type CreateChatSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllChatSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SendQueryRequest struct {
	Id    uuid.UUID
	Query string `json:"query" validate:"required"`
}

type TurnResponse struct {
	Id             uuid.UUID                 `json:"id"`
	Role           string                    `json:"role"`
	Text           string                    `json:"text"`
	Seq            int64                     `json:"seq"`
	Classification string                    `json:"classification,omitempty"`
	Attachments    *conversation.Attachments `json:"attachments,omitempty"`
	InReplyTo      *uuid.UUID                `json:"in_reply_to,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

type SendQueryResponse struct {
	Question TurnResponse `json:"question"`
	Answer   TurnResponse `json:"answer"`
}
