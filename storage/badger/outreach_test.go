package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutreachRepo(t *testing.T) storage.OutreachRepository {
	t.Helper()
	indexRepo, outreachRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		outreachRepo.Close()
		indexRepo.Close()
		backend.Close()
	})
	return outreachRepo
}

func interaction(professor string, sentAt time.Time, followupAfter time.Duration) *core.Interaction {
	i := &core.Interaction{
		StudentName:   "Asha",
		ProfessorName: professor,
		EmailText:     "Dear " + professor,
		SentAt:        sentAt,
	}
	if followupAfter > 0 {
		i.FollowupAt = sentAt.Add(followupAfter)
	}
	return i
}

func TestOutreachRepository_AddAndGet(t *testing.T) {
	repo := newOutreachRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	added, err := repo.AddInteractions(ctx,
		interaction("Dr. Rao", now.Add(-time.Hour), 0),
		interaction("Dr. Iyer", now.Add(-time.Minute), 0),
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)
	assert.Greater(t, added[1].Id, added[0].Id)

	got, err := repo.GetInteraction(ctx, added[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Iyer", got.ProfessorName)

	_, err = repo.GetInteraction(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOutreachRepository_AddRejectsInvalid(t *testing.T) {
	repo := newOutreachRepo(t)

	bad := interaction("", time.Now().Add(-time.Hour), 0)
	_, err := repo.AddInteractions(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrEmptyProfessorName)
}

func TestOutreachRepository_ListOrdered(t *testing.T) {
	repo := newOutreachRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.AddInteractions(ctx,
		interaction("Late", now.Add(-time.Minute), 0),
		interaction("Early", now.Add(-48*time.Hour), 0),
		interaction("Middle", now.Add(-time.Hour), 0),
	)
	require.NoError(t, err)

	all, err := repo.ListInteractions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Early", all[0].ProfessorName)
	assert.Equal(t, "Middle", all[1].ProfessorName)
	assert.Equal(t, "Late", all[2].ProfessorName)
}

func TestOutreachRepository_DueFollowups(t *testing.T) {
	repo := newOutreachRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	day := 24 * time.Hour

	added, err := repo.AddInteractions(ctx,
		interaction("Due", now.Add(-6*day), 5*day),
		interaction("NotYet", now.Add(-2*day), 5*day),
		interaction("NoFollowup", now.Add(-10*day), 0),
		interaction("AlsoDue", now.Add(-9*day), 5*day),
	)
	require.NoError(t, err)

	due, err := repo.DueFollowups(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "AlsoDue", due[0].ProfessorName)
	assert.Equal(t, "Due", due[1].ProfessorName)

	t.Run("responded interactions drop out", func(t *testing.T) {
		responded := added[0]
		responded.Responded = true
		_, err := repo.UpdateInteractions(ctx, responded)
		require.NoError(t, err)

		due, err := repo.DueFollowups(ctx, now)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "AlsoDue", due[0].ProfessorName)
	})

	t.Run("later clock includes pending", func(t *testing.T) {
		due, err := repo.DueFollowups(ctx, now.Add(4*day))
		require.NoError(t, err)
		assert.Len(t, due, 2)
	})
}

func TestOutreachRepository_UpdateMissing(t *testing.T) {
	repo := newOutreachRepo(t)

	missing := interaction("Dr. Rao", time.Now().Add(-time.Hour), 0)
	missing.Id = 42
	_, err := repo.UpdateInteractions(context.Background(), missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
