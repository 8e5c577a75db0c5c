package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Summary, error)
	RenameProject(ctx context.Context, id, name string) error
	UpdateTimeline(ctx context.Context, id string, tl timeline.Timeline, assets []timeline.Asset) error
	DeleteProject(ctx context.Context, id string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	tlDoc, assetsDoc, err := marshalDocs(p.Timeline, p.Assets)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, timeline, assets, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, tlDoc, assetsDoc,
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, timeline, assets, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	var p Project
	var tlDoc, assetsDoc, createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &tlDoc, &assetsDoc, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tlDoc), &p.Timeline); err != nil {
		return nil, fmt.Errorf("project %s: decode timeline: %w", id, err)
	}
	if err := json.Unmarshal([]byte(assetsDoc), &p.Assets); err != nil {
		return nil, fmt.Errorf("project %s: decode assets: %w", id, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Summary
	for rows.Next() {
		var s Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, &s)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) RenameProject(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, updated_at = datetime('now') WHERE id = ?
	`, name, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) UpdateTimeline(ctx context.Context, id string, tl timeline.Timeline, assets []timeline.Asset) error {
	tlDoc, assetsDoc, err := marshalDocs(tl, assets)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET timeline = ?, assets = ?, updated_at = datetime('now') WHERE id = ?
	`, tlDoc, assetsDoc, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}

// ErrNotFound reports an update against a project id that does not exist.
var ErrNotFound = sql.ErrNoRows

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func marshalDocs(tl timeline.Timeline, assets []timeline.Asset) (string, string, error) {
	if assets == nil {
		assets = []timeline.Asset{}
	}
	tlDoc, err := json.Marshal(tl)
	if err != nil {
		return "", "", fmt.Errorf("encode timeline: %w", err)
	}
	assetsDoc, err := json.Marshal(assets)
	if err != nil {
		return "", "", fmt.Errorf("encode assets: %w", err)
	}
	return string(tlDoc), string(assetsDoc), nil
}
