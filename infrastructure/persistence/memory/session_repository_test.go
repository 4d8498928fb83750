package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowbuilder/application/session"
	pkgerrors "workflowbuilder/pkg/errors"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(2)

	a := session.New("A", session.Deps{})
	b := session.New("B", session.Deps{})
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, repo.Save(ctx, a), "re-saving an existing session is not a new slot")

	err := repo.Save(ctx, session.New("C", session.Deps{}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))

	got, err := repo.Get(ctx, a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(ctx, a.ID()))
	require.NoError(t, repo.Delete(ctx, a.ID()))
	_, err = repo.Get(ctx, a.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
