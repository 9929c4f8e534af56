package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/pkg/errors"
)

func TestPolicyStore_SaveAndFind(t *testing.T) {
	store := NewPolicyStore()
	ctx := context.Background()

	policy := &models.Policy{
		PolicyID: "pol-1",
		Name:     "Emergency Quarantine Policy",
		Type:     models.PolicyThreatResponse,
		Status:   models.PolicyDraft,
		Source:   models.SourceAIRecommended,
	}
	require.NoError(t, store.Save(ctx, policy))
	assert.False(t, policy.CreatedAt.IsZero())

	found, err := store.FindByID(ctx, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, "Emergency Quarantine Policy", found.Name)

	_, err = store.FindByID(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestPolicyStore_SaveRequiresID(t *testing.T) {
	store := NewPolicyStore()
	err := store.Save(context.Background(), &models.Policy{})
	assert.Error(t, err)
}

func TestPolicyStore_ListByStatus(t *testing.T) {
	store := NewPolicyStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Policy{PolicyID: "a", Status: models.PolicyDraft}))
	require.NoError(t, store.Save(ctx, &models.Policy{PolicyID: "b", Status: models.PolicyActive}))
	require.NoError(t, store.Save(ctx, &models.Policy{PolicyID: "c", Status: models.PolicyDraft}))

	drafts, err := store.ListByStatus(ctx, models.PolicyDraft)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPolicyStore_UpdateStatus(t *testing.T) {
	store := NewPolicyStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Policy{PolicyID: "p", Status: models.PolicyDraft}))
	require.NoError(t, store.UpdateStatus(ctx, "p", models.PolicyActive, "admin"))

	p, err := store.FindByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, p.Status)
	assert.Equal(t, "admin", p.ApprovedBy)
	assert.True(t, p.IsActive())

	assert.True(t, errors.IsNotFound(store.UpdateStatus(ctx, "missing", models.PolicyActive, "admin")))
}

func TestPolicyStore_Delete(t *testing.T) {
	store := NewPolicyStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Policy{PolicyID: "p"}))
	require.NoError(t, store.Delete(ctx, "p"))
	assert.True(t, errors.IsNotFound(store.Delete(ctx, "p")))
}
