package mapper

import (
	"encoding/json"
	"time"

	"iot-console-be/internal/entity"
	"iot-console-be/internal/model"
	"iot-console-be/pkg/query/conversation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Turn Mappers

func (m *ChatMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		dt := t.DeletedAt.Time
		deletedAt = &dt
	}

	var attachments *conversation.Attachments
	if len(t.Attachments) > 0 {
		var parsed conversation.Attachments
		if err := json.Unmarshal(t.Attachments, &parsed); err == nil {
			attachments = &parsed
		}
	}

	return &entity.ChatTurn{
		Id:             t.Id,
		ChatSessionId:  t.ChatSessionId,
		Role:           t.Role,
		Text:           t.Text,
		Seq:            t.Seq,
		Classification: t.Classification,
		Attachments:    attachments,
		InReplyTo:      t.InReplyTo,
		CreatedAt:      t.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      t.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var attachments datatypes.JSON
	if t.Attachments != nil {
		if data, err := json.Marshal(t.Attachments); err == nil {
			attachments = data
		}
	}

	return &model.ChatTurn{
		Id:             t.Id,
		ChatSessionId:  t.ChatSessionId,
		Role:           t.Role,
		Text:           t.Text,
		Seq:            t.Seq,
		Classification: t.Classification,
		Attachments:    attachments,
		InReplyTo:      t.InReplyTo,
		CreatedAt:      t.CreatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ChatMapper) ChatTurnsToEntities(models []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(models))
	for i, t := range models {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}
