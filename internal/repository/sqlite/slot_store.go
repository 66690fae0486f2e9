// Package sqlite is the local durable slot store, used by the command line
// tool and by servers running without postgres. It keeps the same table
// layout as the postgres repository in a single file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/contract"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const DefaultDBName = "copyflow.db"

const schema = `
CREATE TABLE IF NOT EXISTS workflow_slots (
	id          TEXT PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	name        TEXT NOT NULL,
	scope       TEXT NOT NULL,
	value       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER,
	UNIQUE (workflow_id, name)
);
`

type SlotStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ contract.SlotStore   = &SlotStore{}
	_ contract.SlotBatcher = &SlotStore{}
)

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*SlotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SlotStore{db: db, now: time.Now}, nil
}

func (s *SlotStore) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SlotStore) Put(ctx context.Context, slot *entity.WorkflowSlot) error {
	return s.put(ctx, s.db, slot)
}

// PutAll writes every slot in one transaction.
func (s *SlotStore) PutAll(ctx context.Context, slots []*entity.WorkflowSlot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	for _, slot := range slots {
		if err := s.put(ctx, tx, slot); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SlotStore) put(ctx context.Context, q querier, slot *entity.WorkflowSlot) error {
	id := slot.Id
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := s.now().UnixMilli()

	_, err := q.ExecContext(ctx, `
		INSERT INTO workflow_slots (id, workflow_id, name, scope, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (workflow_id, name) DO UPDATE SET
			value = excluded.value,
			scope = excluded.scope,
			updated_at = ?`,
		id.String(), slot.WorkflowId.String(), slot.Name, slot.Scope, slot.Value, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite put slot %s: %w", slot.Name, err)
	}

	stored, err := s.get(ctx, q, slot.WorkflowId, slot.Name)
	if err != nil {
		return err
	}
	if stored != nil {
		*slot = *stored
	}
	return nil
}

const selectColumns = `SELECT id, workflow_id, name, scope, value, created_at, updated_at FROM workflow_slots`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*entity.WorkflowSlot, error) {
	var (
		id, workflowId string
		slot           entity.WorkflowSlot
		createdAt      int64
		updatedAt      sql.NullInt64
	)
	if err := row.Scan(&id, &workflowId, &slot.Name, &slot.Scope, &slot.Value, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if slot.Id, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("slot id: %w", err)
	}
	if slot.WorkflowId, err = uuid.Parse(workflowId); err != nil {
		return nil, fmt.Errorf("slot workflow id: %w", err)
	}
	slot.CreatedAt = time.UnixMilli(createdAt)
	if updatedAt.Valid {
		t := time.UnixMilli(updatedAt.Int64)
		slot.UpdatedAt = &t
	}
	return &slot, nil
}

func (s *SlotStore) Get(ctx context.Context, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error) {
	return s.get(ctx, s.db, workflowId, name)
}

func (s *SlotStore) get(ctx context.Context, q querier, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error) {
	row := q.QueryRowContext(ctx, selectColumns+` WHERE workflow_id = ? AND name = ?`, workflowId.String(), name)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get slot %s: %w", name, err)
	}
	return slot, nil
}

func (s *SlotStore) List(ctx context.Context, workflowId uuid.UUID) ([]*entity.WorkflowSlot, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE workflow_id = ? ORDER BY name`, workflowId.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite list slots: %w", err)
	}
	defer rows.Close()

	result := make([]*entity.WorkflowSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, slot)
	}
	return result, rows.Err()
}

// Workflows returns every workflow id that has at least one slot.
func (s *SlotStore) Workflows(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT workflow_id FROM workflow_slots ORDER BY workflow_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite list workflows: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SlotStore) Delete(ctx context.Context, workflowId uuid.UUID, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, 0, len(names)+1)
	args = append(args, workflowId.String())
	for _, n := range names {
		args = append(args, n)
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM workflow_slots WHERE workflow_id = ? AND name IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("sqlite delete slots: %w", err)
	}
	return nil
}
