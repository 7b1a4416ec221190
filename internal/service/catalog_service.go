package service

import (
	"context"

	"iot-console-be/internal/dto"
	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/client/strategy"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CustomerLookup is the slice of the strategy agent serving single-customer
// detail reads.
type CustomerLookup interface {
	CustomerDetails(ctx context.Context, customerId string) (*strategy.Customer, error)
}

type ICatalogService interface {
	GetState(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error)
	SetFilter(ctx context.Context, sessionId uuid.UUID, req *dto.SetFilterRequest) (*dto.CatalogStateResponse, error)
	Select(ctx context.Context, sessionId uuid.UUID, req *dto.SelectEntityRequest) (*dto.CatalogStateResponse, error)
	ClearSelection(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error)
	Refresh(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error)
	CustomerDetail(ctx context.Context, customerId string) (*dto.CustomerDetailResponse, error)
}

type catalogService struct {
	states ISessionStateService
	lookup CustomerLookup
}

func NewCatalogService(states ISessionStateService, lookup CustomerLookup) ICatalogService {
	return &catalogService{states: states, lookup: lookup}
}

func (c *catalogService) GetState(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error) {
	state, err := c.states.Ensure(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	return catalogState(state.Selection), nil
}

func (c *catalogService) SetFilter(ctx context.Context, sessionId uuid.UUID, req *dto.SetFilterRequest) (*dto.CatalogStateResponse, error) {
	state, err := c.states.Ensure(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	state.Selection.SetFilterText(req.Filter)
	return catalogState(state.Selection), nil
}

func (c *catalogService) Select(ctx context.Context, sessionId uuid.UUID, req *dto.SelectEntityRequest) (*dto.CatalogStateResponse, error) {
	state, err := c.states.Ensure(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	if err := state.Selection.Select(req.EntityId); err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return catalogState(state.Selection), nil
}

func (c *catalogService) ClearSelection(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error) {
	state, err := c.states.Ensure(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	state.Selection.Clear()
	return catalogState(state.Selection), nil
}

// Refresh rebuilds the session's catalog from the directory. Selection and
// filter state are dropped along with the old catalog.
func (c *catalogService) Refresh(ctx context.Context, sessionId uuid.UUID) (*dto.CatalogStateResponse, error) {
	c.states.Drop(sessionId.String())
	state, err := c.states.Ensure(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	return catalogState(state.Selection), nil
}

func (c *catalogService) CustomerDetail(ctx context.Context, customerId string) (*dto.CustomerDetailResponse, error) {
	customer, err := c.lookup.CustomerDetails(ctx, customerId)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadGateway, "customer directory is unavailable right now")
	}
	return &dto.CustomerDetailResponse{
		Id:             customer.Id,
		Name:           customer.Name,
		Segment:        customer.Segment,
		DocumentBacked: customer.DocumentRef != "",
	}, nil
}

func catalogState(model *catalog.SelectionModel) *dto.CatalogStateResponse {
	options := model.Options()
	optionResponses := make([]dto.EntityOptionResponse, 0, len(options))
	for _, option := range options {
		optionResponses = append(optionResponses, dto.EntityOptionResponse{
			Id:             option.Id,
			DisplayName:    option.DisplayName,
			DocumentBacked: option.IsDocumentBacked(),
		})
	}

	selection := model.Selection()
	kind := "none"
	switch {
	case selection.IsAll():
		kind = "all"
	case selection.IsSingle():
		kind = "single"
	}

	return &dto.CatalogStateResponse{
		Options: optionResponses,
		Selection: dto.SelectionResponse{
			Kind:        kind,
			EntityId:    selection.EntityId,
			DisplayText: model.DisplayText(),
		},
	}
}
