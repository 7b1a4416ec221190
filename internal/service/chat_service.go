package service

import (
	"context"
	"time"

	"iot-console-be/internal/dto"
	"iot-console-be/internal/entity"
	"iot-console-be/internal/pkg/logger"
	"iot-console-be/internal/repository/specification"
	"iot-console-be/internal/repository/unitofwork"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/events"
	pktNats "iot-console-be/pkg/nats"
	"iot-console-be/pkg/query/conversation"
	"iot-console-be/pkg/query/router"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllChatSessionResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	SendQuery(ctx context.Context, userId uuid.UUID, req *dto.SendQueryRequest) (*dto.SendQueryResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.TurnResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	states         ISessionStateService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	states ISessionStateService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		states:         states,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (c *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// Warm the in-memory state so the first query does not pay the catalog
	// load. A failure here is not fatal; Ensure retries on first use.
	if _, err := c.states.Ensure(ctx, session.Id.String()); err != nil {
		c.logger.Warn("ChatService", "Failed to warm session state", map[string]interface{}{"error": err.Error()})
	}

	return &dto.CreateChatSessionResponse{
		Id: session.Id,
	}, nil
}

func (c *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, &dto.GetAllChatSessionResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return result, nil
}

func (c *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatTurnRepository().DeleteBySessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	c.states.Drop(id.String())
	return nil
}

func (c *chatService) SendQuery(ctx context.Context, userId uuid.UUID, req *dto.SendQueryRequest) (*dto.SendQueryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	state, err := c.states.Ensure(ctx, session.Id.String())
	if err != nil {
		return nil, err
	}

	target, err := resolveTarget(state.Selection)
	if err != nil {
		return nil, err
	}

	answer := state.Router.Dispatch(ctx, target, req.Query)

	question := findQuestion(state.Router.Log(), answer.InReplyTo)

	if err := c.persistTurns(ctx, session.Id, question, answer); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "QUERY_ANSWERED",
			Data: map[string]interface{}{
				"session_id":     session.Id,
				"user_id":        userId,
				"classification": string(answer.Classification),
			},
			OccurredAt: time.Now(),
		}
		// Auxiliary event, don't fail the request on publish errors
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("ChatService", "Failed to publish QUERY_ANSWERED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.SendQueryResponse{
		Question: turnToResponse(question),
		Answer:   turnToResponse(answer),
	}, nil
}

func (c *chatService) GetHistory(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.TurnResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.TurnResponse, 0, len(turns))
	for _, turn := range turns {
		result = append(result, &dto.TurnResponse{
			Id:             turn.Id,
			Role:           turn.Role,
			Text:           turn.Text,
			Seq:            turn.Seq,
			Classification: turn.Classification,
			Attachments:    turn.Attachments,
			InReplyTo:      turn.InReplyTo,
			CreatedAt:      turn.CreatedAt,
		})
	}
	return result, nil
}

func (c *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}
	return session, nil
}

func (c *chatService) persistTurns(ctx context.Context, sessionId uuid.UUID, question, answer conversation.Turn) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	turns := []*entity.ChatTurn{
		turnToEntity(sessionId, question),
		turnToEntity(sessionId, answer),
	}
	if err := uow.ChatTurnRepository().CreateBulk(ctx, turns); err != nil {
		return err
	}
	return uow.Commit()
}

// resolveTarget maps the session's selection onto a routing target. With no
// selection the question still dispatches; the unified backend answers it
// unscoped, same as the all-customers selection.
func resolveTarget(model *catalog.SelectionModel) (router.Target, error) {
	selection := model.Selection()
	switch {
	case selection.IsAll():
		return router.Target{All: true}, nil
	case selection.IsSingle():
		ref, ok := model.Selected()
		if !ok {
			return router.Target{}, fiber.NewError(fiber.StatusConflict, "selected customer is no longer in the catalog")
		}
		return router.Target{
			EntityId:    ref.Id,
			DisplayName: ref.DisplayName,
			DocumentRef: ref.DocumentRef,
		}, nil
	default:
		return router.Target{}, nil
	}
}

func findQuestion(log *conversation.Log, questionId uuid.UUID) conversation.Turn {
	for _, turn := range log.Turns() {
		if turn.Id == questionId {
			return turn
		}
	}
	return conversation.Turn{Id: questionId}
}

func turnToEntity(sessionId uuid.UUID, turn conversation.Turn) *entity.ChatTurn {
	var inReplyTo *uuid.UUID
	if turn.InReplyTo != uuid.Nil {
		id := turn.InReplyTo
		inReplyTo = &id
	}
	return &entity.ChatTurn{
		Id:             turn.Id,
		ChatSessionId:  sessionId,
		Role:           string(turn.Role),
		Text:           turn.Text,
		Seq:            int64(turn.Seq),
		Classification: string(turn.Classification),
		Attachments:    turn.Attachments,
		InReplyTo:      inReplyTo,
		CreatedAt:      turn.CreatedAt,
	}
}

func turnToResponse(turn conversation.Turn) dto.TurnResponse {
	var inReplyTo *uuid.UUID
	if turn.InReplyTo != uuid.Nil {
		id := turn.InReplyTo
		inReplyTo = &id
	}
	return dto.TurnResponse{
		Id:             turn.Id,
		Role:           string(turn.Role),
		Text:           turn.Text,
		Seq:            int64(turn.Seq),
		Classification: string(turn.Classification),
		Attachments:    turn.Attachments,
		InReplyTo:      inReplyTo,
		CreatedAt:      turn.CreatedAt,
	}
}
