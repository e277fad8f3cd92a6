package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-builder/internal/model"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved resume plus the template it was last exported with.
type Snapshot struct {
	ID        uuid.UUID    `json:"id"`
	Resume    model.Resume `json:"resume"`
	Template  string       `json:"template,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SnapshotsRepo stores snapshots as JSONB rows in resume_snapshots.
type SnapshotsRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotsRepo(pool *pgxpool.Pool) *SnapshotsRepo {
	return &SnapshotsRepo{pool: pool}
}

// Save inserts or replaces a snapshot. CreatedAt survives updates.
func (r *SnapshotsRepo) Save(ctx context.Context, s *Snapshot) error {
	data, err := json.Marshal(s.Resume)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	err = r.pool.QueryRow(ctx, `INSERT INTO resume_snapshots (id, data, template, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, template = EXCLUDED.template, updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		s.ID, data, s.Template, s.CreatedAt, s.UpdatedAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SnapshotsRepo) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var (
		s    = Snapshot{ID: id}
		data []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT data, template, created_at, updated_at FROM resume_snapshots WHERE id = $1`, id,
	).Scan(&data, &s.Template, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	// Rows written by older clients may not match the current shape.
	res, _, err := model.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	s.Resume = res
	return &s, nil
}

// MemorySnapshots serves when no database is configured.
type MemorySnapshots struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Snapshot
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{rows: map[uuid.UUID]Snapshot{}}
}

func (m *MemorySnapshots) Save(_ context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := m.rows[s.ID]; ok {
		s.CreatedAt = prev.CreatedAt
	} else if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	cp := *s
	cp.Resume = s.Resume.Clone()
	m.rows[s.ID] = cp
	return nil
}

func (m *MemorySnapshots) Get(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Resume = s.Resume.Clone()
	return &s, nil
}
