package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/model"
)

func TestMemorySnapshots_SaveGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySnapshots()
	s := &Snapshot{ID: uuid.New(), Resume: model.Resume{Name: "Jane", Skills: []model.Skill{{Name: "Go"}}}, Template: "modern"}
	require.NoError(t, m.Save(ctx, s))
	created := s.CreatedAt

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Resume.Name)

	got.Resume.Skills[0].Name = "Rust"
	again, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", again.Resume.Skills[0].Name)

	time.Sleep(time.Millisecond)
	s2 := &Snapshot{ID: s.ID, Resume: model.Resume{Name: "Jane Doe"}}
	require.NoError(t, m.Save(ctx, s2))
	assert.Equal(t, created, s2.CreatedAt)
	assert.True(t, s2.UpdatedAt.After(created))
}

func TestMemorySnapshots_NotFound(t *testing.T) {
	_, err := NewMemorySnapshots().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// Needs a disposable Postgres; set TEST_DATABASE_URL to run.
func TestSnapshotsRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migration.RunMigrations(ctx, pool))

	r := NewSnapshotsRepo(pool)
	s := &Snapshot{ID: uuid.New(), Resume: model.Resume{Name: "Jane", Experience: []model.Experience{{Title: "Engineer"}}}, Template: "hybrid"}
	require.NoError(t, r.Save(ctx, s))

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Resume.Name)
	assert.Equal(t, "hybrid", got.Template)
	require.Len(t, got.Resume.Experience, 1)

	_, err = r.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
