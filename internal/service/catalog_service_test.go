package service

import (
	"context"
	"errors"
	"testing"

	"iot-console-be/internal/dto"
	"iot-console-be/internal/repository/memory"
	"iot-console-be/pkg/client/docquery"
	"iot-console-be/pkg/client/strategy"
	"iot-console-be/pkg/client/unified"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	customers []strategy.Customer
	calls     int
}

func (f *fakeDirectory) ListCustomers(_ context.Context) ([]strategy.Customer, error) {
	f.calls++
	return f.customers, nil
}

func (f *fakeDirectory) CustomerDetails(_ context.Context, customerId string) (*strategy.Customer, error) {
	for _, customer := range f.customers {
		if customer.Id == customerId {
			c := customer
			return &c, nil
		}
	}
	return nil, errors.New("not found")
}

type noopDocClient struct{}

func (noopDocClient) Query(_ context.Context, _, _ string) (*docquery.Result, error) {
	return &docquery.Result{}, nil
}

type noopUnifiedClient struct{}

func (noopUnifiedClient) Query(_ context.Context, _ string) (*unified.Result, error) {
	return &unified.Result{}, nil
}

func newCatalogFixture() (ICatalogService, *fakeDirectory, uuid.UUID) {
	directory := &fakeDirectory{customers: []strategy.Customer{
		{Id: "C001", Name: "Acme Co"},
		{Id: "C002", Name: "Globex Retail"},
		{Id: "C100", Name: "Zeta Markets", DocumentRef: "zeta_contract.pdf"},
	}}
	states := NewSessionStateService(memory.NewSessionRepository(), directory, noopDocClient{}, noopUnifiedClient{})
	return NewCatalogService(states, directory), directory, uuid.New()
}

func TestGetStateOffersAllFirst(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	state, err := svc.GetState(context.Background(), sessionId)
	require.NoError(t, err)

	require.Len(t, state.Options, 4)
	assert.Equal(t, "ALL", state.Options[0].Id)
	assert.Equal(t, "none", state.Selection.Kind)
	assert.True(t, state.Options[3].DocumentBacked)
}

func TestCatalogLoadedOncePerSession(t *testing.T) {
	svc, directory, sessionId := newCatalogFixture()

	_, err := svc.GetState(context.Background(), sessionId)
	require.NoError(t, err)
	_, err = svc.GetState(context.Background(), sessionId)
	require.NoError(t, err)

	assert.Equal(t, 1, directory.calls)
}

func TestSelectCustomer(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	state, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "C001"})
	require.NoError(t, err)

	assert.Equal(t, "single", state.Selection.Kind)
	assert.Equal(t, "C001", state.Selection.EntityId)
	assert.Equal(t, "Acme Co", state.Selection.DisplayText)
}

func TestSelectUnknownCustomer(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	_, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "C404"})
	require.Error(t, err)
}

func TestFilterRevertsStaleSelection(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	_, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "C001"})
	require.NoError(t, err)

	// The selection still matches, so it sticks.
	state, err := svc.SetFilter(context.Background(), sessionId, &dto.SetFilterRequest{Filter: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "single", state.Selection.Kind)

	// Filtered out: the selection reverts rather than pointing at a hidden
	// customer.
	state, err = svc.SetFilter(context.Background(), sessionId, &dto.SetFilterRequest{Filter: "Zeta"})
	require.NoError(t, err)
	assert.Equal(t, "none", state.Selection.Kind)
	require.Len(t, state.Options, 2)
	assert.Equal(t, "C100", state.Options[1].Id)
}

func TestAllSelectionSurvivesFiltering(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	_, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "ALL"})
	require.NoError(t, err)

	state, err := svc.SetFilter(context.Background(), sessionId, &dto.SetFilterRequest{Filter: "no match at all"})
	require.NoError(t, err)
	assert.Equal(t, "all", state.Selection.Kind)
	require.Len(t, state.Options, 1)
	assert.Equal(t, "ALL", state.Options[0].Id)
}

func TestRefreshRebuildsCatalog(t *testing.T) {
	svc, directory, sessionId := newCatalogFixture()

	_, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "C001"})
	require.NoError(t, err)

	directory.customers = append(directory.customers, strategy.Customer{Id: "C200", Name: "Umbrella Corp"})

	state, err := svc.Refresh(context.Background(), sessionId)
	require.NoError(t, err)

	// New catalog, clean slate: the old selection does not survive.
	assert.Equal(t, "none", state.Selection.Kind)
	require.Len(t, state.Options, 5)
	assert.Equal(t, "C200", state.Options[4].Id)
	assert.Equal(t, 2, directory.calls)
}

func TestCustomerDetail(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	detail, err := svc.CustomerDetail(context.Background(), "C100")
	require.NoError(t, err)
	assert.Equal(t, "Zeta Markets", detail.Name)
	assert.True(t, detail.DocumentBacked)

	_, err = svc.CustomerDetail(context.Background(), "C404")
	require.Error(t, err)
}

func TestClearSelection(t *testing.T) {
	svc, _, sessionId := newCatalogFixture()

	_, err := svc.Select(context.Background(), sessionId, &dto.SelectEntityRequest{EntityId: "C002"})
	require.NoError(t, err)

	state, err := svc.ClearSelection(context.Background(), sessionId)
	require.NoError(t, err)
	assert.Equal(t, "none", state.Selection.Kind)
	assert.Empty(t, state.Selection.DisplayText)
}
