package service

import (
	"testing"

	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/query/conversation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelectionModel(t *testing.T) *catalog.SelectionModel {
	t.Helper()
	model, err := catalog.NewSelectionModel([]catalog.EntityRef{
		{Id: "C001", DisplayName: "Acme Co"},
		{Id: "C100", DisplayName: "Zeta Markets", DocumentRef: "zeta_contract.pdf"},
	})
	require.NoError(t, err)
	return model
}

func TestResolveTargetSingle(t *testing.T) {
	model := newSelectionModel(t)
	require.NoError(t, model.Select("C100"))

	target, err := resolveTarget(model)
	require.NoError(t, err)
	assert.Equal(t, "C100", target.EntityId)
	assert.Equal(t, "Zeta Markets", target.DisplayName)
	assert.Equal(t, "zeta_contract.pdf", target.DocumentRef)
	assert.False(t, target.All)
}

func TestResolveTargetAll(t *testing.T) {
	model := newSelectionModel(t)
	require.NoError(t, model.Select(catalog.AllKey))

	target, err := resolveTarget(model)
	require.NoError(t, err)
	assert.True(t, target.All)
	assert.Empty(t, target.EntityId)
}

func TestResolveTargetNoSelectionDispatchesUnscoped(t *testing.T) {
	model := newSelectionModel(t)

	target, err := resolveTarget(model)
	require.NoError(t, err)
	assert.False(t, target.All)
	assert.Empty(t, target.EntityId)
	assert.Empty(t, target.DocumentRef)
}

func TestResolveTargetAfterStaleRevert(t *testing.T) {
	model := newSelectionModel(t)
	require.NoError(t, model.Select("C100"))
	model.SetFilterText("acme") // filters out Zeta Markets, selection reverts

	target, err := resolveTarget(model)
	require.NoError(t, err)
	assert.Empty(t, target.EntityId)
	assert.Empty(t, target.DocumentRef)
}

func TestTurnToEntity(t *testing.T) {
	sessionId := uuid.New()
	questionId := uuid.New()

	turn := conversation.Turn{
		Id:             uuid.New(),
		Seq:            3,
		Role:           conversation.RoleAssistant,
		Text:           "3 devices offline",
		Classification: conversation.ClassDatabase,
		Attachments:    &conversation.Attachments{RowCount: 3},
		InReplyTo:      questionId,
	}

	e := turnToEntity(sessionId, turn)

	assert.Equal(t, sessionId, e.ChatSessionId)
	assert.Equal(t, "assistant", e.Role)
	assert.Equal(t, int64(3), e.Seq)
	assert.Equal(t, "DATABASE", e.Classification)
	require.NotNil(t, e.InReplyTo)
	assert.Equal(t, questionId, *e.InReplyTo)
}

func TestTurnToEntityUserTurnHasNoReplyLink(t *testing.T) {
	e := turnToEntity(uuid.New(), conversation.Turn{
		Id:   uuid.New(),
		Role: conversation.RoleUser,
		Text: "how many offline?",
	})
	assert.Nil(t, e.InReplyTo)
}

func TestFindQuestion(t *testing.T) {
	log := conversation.NewLog()
	question := log.Append(conversation.Turn{Role: conversation.RoleUser, Text: "hello"})
	log.Append(conversation.Turn{Role: conversation.RoleAssistant, Text: "hi", InReplyTo: question.Id})

	found := findQuestion(log, question.Id)
	assert.Equal(t, "hello", found.Text)
}
