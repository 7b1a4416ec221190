package service

import (
	"context"
	"fmt"
	"time"

	"iot-console-be/internal/repository/memory"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/client/strategy"
	"iot-console-be/pkg/query/conversation"
	"iot-console-be/pkg/query/router"
	"iot-console-be/pkg/store"
)

// CustomerDirectory is the slice of the strategy agent used to load the
// entity catalog.
type CustomerDirectory interface {
	ListCustomers(ctx context.Context) ([]strategy.Customer, error)
}

// ISessionStateService owns the in-memory working state of console
// sessions. State is built lazily on first touch: the entity catalog comes
// from the customer directory, the conversation starts empty.
type ISessionStateService interface {
	Ensure(ctx context.Context, sessionID string) (*store.Session, error)
	Get(sessionID string) (*store.Session, bool)
	Drop(sessionID string)
}

type sessionStateService struct {
	sessions  *memory.SessionRepository
	directory CustomerDirectory
	documents router.DocumentClient
	unified   router.UnifiedClient
}

func NewSessionStateService(
	sessions *memory.SessionRepository,
	directory CustomerDirectory,
	documents router.DocumentClient,
	unified router.UnifiedClient,
) ISessionStateService {
	return &sessionStateService{
		sessions:  sessions,
		directory: directory,
		documents: documents,
		unified:   unified,
	}
}

func (s *sessionStateService) Ensure(ctx context.Context, sessionID string) (*store.Session, error) {
	if session, found := s.sessions.Get(sessionID); found {
		session.Touch()
		s.sessions.Save(session)
		return session, nil
	}

	customers, err := s.directory.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer catalog: %w", err)
	}

	refs := make([]catalog.EntityRef, 0, len(customers))
	for _, customer := range customers {
		ref := catalog.EntityRef{
			Id:          customer.Id,
			DisplayName: customer.Name,
			DocumentRef: customer.DocumentRef,
		}
		if customer.Segment != "" {
			ref.SearchableFields = []string{customer.Segment}
		}
		refs = append(refs, ref)
	}

	selection, err := catalog.NewSelectionModel(refs)
	if err != nil {
		return nil, fmt.Errorf("build selection model: %w", err)
	}

	now := time.Now()
	session := &store.Session{
		ID:           sessionID,
		Selection:    selection,
		Router:       router.NewRouter(s.documents, s.unified, conversation.NewLog()),
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions.Save(session)
	return session, nil
}

func (s *sessionStateService) Get(sessionID string) (*store.Session, bool) {
	return s.sessions.Get(sessionID)
}

func (s *sessionStateService) Drop(sessionID string) {
	s.sessions.Delete(sessionID)
}
