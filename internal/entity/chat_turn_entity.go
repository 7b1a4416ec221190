package entity

import (
	"time"

	"iot-console-be/pkg/query/conversation"

	"github.com/google/uuid"
)

// ChatTurn is one persisted conversation turn. InReplyTo is nil for user
// turns and carries the originating user turn's id for assistant turns.
type ChatTurn struct {
	Id             uuid.UUID
	ChatSessionId  uuid.UUID
	Role           string
	Text           string
	Seq            int64
	Classification string
	Attachments    *conversation.Attachments
	InReplyTo      *uuid.UUID
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
