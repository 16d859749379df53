//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/testhelpers"
)

// agentTestContext holds test dependencies for agent repository tests.
// Each test gets its own user so the shared container stays isolated.
type agentTestContext struct {
	t      *testing.T
	repo   AgentRepository
	userID string
}

func setupAgentTest(t *testing.T) *agentTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	return &agentTestContext{
		t:      t,
		repo:   NewAgentRepository(engineDB.DB),
		userID: "user-" + uuid.NewString(),
	}
}

func (tc *agentTestContext) createAgent(name string) *models.Agent {
	tc.t.Helper()
	agent := &models.Agent{
		UserID:       tc.userID,
		Name:         name,
		Instructions: "You are " + name + ".",
	}
	if err := tc.repo.Create(context.Background(), agent); err != nil {
		tc.t.Fatalf("failed to create agent: %v", err)
	}
	return agent
}

func TestAgentRepository_CreateAndGet(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	created := tc.createAgent("Math Tutor")
	require.NotEqual(t, uuid.Nil, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := tc.repo.Get(ctx, tc.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math Tutor", got.Name)
	assert.Equal(t, tc.userID, got.UserID)
}

func TestAgentRepository_Get_OtherUserNotFound(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	created := tc.createAgent("Private Agent")

	_, err := tc.repo.Get(ctx, "user-"+uuid.NewString(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAgentRepository_Update(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	created := tc.createAgent("Old Name")

	updated := &models.Agent{
		ID:           created.ID,
		UserID:       tc.userID,
		Name:         "New Name",
		Instructions: "New instructions.",
	}
	require.NoError(t, tc.repo.Update(ctx, updated))

	got, err := tc.repo.Get(ctx, tc.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "New instructions.", got.Instructions)
	assert.Equal(t, created.CreatedAt.UTC(), got.CreatedAt.UTC())
}

func TestAgentRepository_Update_OtherUserNotFound(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	created := tc.createAgent("Theirs")

	err := tc.repo.Update(ctx, &models.Agent{
		ID:           created.ID,
		UserID:       "user-" + uuid.NewString(),
		Name:         "Hijacked",
		Instructions: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := tc.repo.Get(ctx, tc.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.Name)
}

func TestAgentRepository_Delete_ReturnsRow(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	created := tc.createAgent("Doomed")

	deleted, err := tc.repo.Delete(ctx, tc.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", deleted.Name)

	_, err = tc.repo.Get(ctx, tc.userID, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAgentRepository_Delete_ReferencedAgentConflicts(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()
	engineDB := testhelpers.GetEngineDB(t)

	agent := tc.createAgent("Busy Agent")

	meetingRepo := NewMeetingRepository(engineDB.DB)
	meeting := &models.Meeting{
		UserID:  tc.userID,
		AgentID: agent.ID,
		Name:    "Standup",
		Status:  models.StatusUpcoming,
	}
	require.NoError(t, meetingRepo.Create(ctx, meeting))

	_, err := tc.repo.Delete(ctx, tc.userID, agent.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Still there after the failed delete.
	_, err = tc.repo.Get(ctx, tc.userID, agent.ID)
	assert.NoError(t, err)

	// Removing the meeting unblocks the delete.
	_, err = meetingRepo.Delete(ctx, tc.userID, meeting.ID)
	require.NoError(t, err)
	_, err = tc.repo.Delete(ctx, tc.userID, agent.ID)
	assert.NoError(t, err)
}

func TestAgentRepository_List_Pagination(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		tc.createAgent(fmt.Sprintf("Agent %02d", i))
	}

	page1, total, err := tc.repo.List(ctx, tc.userID, AgentFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page1, 10)
	assert.Equal(t, 15, total)

	page2, total, err := tc.repo.List(ctx, tc.userID, AgentFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page2, 5)
	assert.Equal(t, 15, total)

	// No overlap between pages.
	seen := make(map[uuid.UUID]bool)
	for _, a := range page1 {
		seen[a.ID] = true
	}
	for _, a := range page2 {
		assert.False(t, seen[a.ID], "agent %s appears on both pages", a.ID)
	}
}

func TestAgentRepository_List_SearchCaseInsensitive(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	tc.createAgent("MATH Tutor")
	tc.createAgent("History Tutor")
	tc.createAgent("Chef")

	agents, total, err := tc.repo.List(ctx, tc.userID, AgentFilter{Search: "math", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, agents, 1)
	assert.Equal(t, "MATH Tutor", agents[0].Name)

	agents, total, err = tc.repo.List(ctx, tc.userID, AgentFilter{Search: "tutor", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, agents, 2)
}

func TestAgentRepository_List_ScopedToUser(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	tc.createAgent("Mine")

	other := setupAgentTest(t)
	other.createAgent("Someone else's")

	agents, total, err := tc.repo.List(ctx, tc.userID, AgentFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, agents, 1)
	assert.Equal(t, "Mine", agents[0].Name)
}

func TestAgentRepository_List_NewestFirst(t *testing.T) {
	tc := setupAgentTest(t)
	ctx := context.Background()

	first := tc.createAgent("First")
	second := tc.createAgent("Second")

	agents, _, err := tc.repo.List(ctx, tc.userID, AgentFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, agents, 2)

	// created_at DESC with id DESC as the tie-break keeps insertion order
	// stable even for identical timestamps.
	if agents[0].CreatedAt.Equal(agents[1].CreatedAt) {
		assert.True(t, agents[0].ID.String() > agents[1].ID.String())
	} else {
		assert.Equal(t, second.ID, agents[0].ID)
		assert.Equal(t, first.ID, agents[1].ID)
	}
}
