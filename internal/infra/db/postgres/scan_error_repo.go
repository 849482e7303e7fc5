package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/visiai/internal/domain/scanerrors"
	"github.com/bryanwahyu/visiai/internal/infra/db"
)

type ScanErrorRepository struct{ db *sql.DB }

func NewScanErrorRepository(db *sql.DB) *ScanErrorRepository { return &ScanErrorRepository{db: db} }

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
	const q = `
INSERT INTO visiai_scan_errors (url, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return r.db.QueryRowContext(ctx, q,
		db.StringOrDash(e.URL), db.StringOrDash(e.Phase), db.StringOrDash(e.Message),
		db.NormalizeDetails(e.DetailsJSON), created,
	).Scan(&e.ID)
}

func (r *ScanErrorRepository) ListByURL(ctx context.Context, url string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, url, phase, message, details_json, created_at FROM visiai_scan_errors`
	args := []any{}
	if strings.TrimSpace(url) != "" {
		q += ` WHERE url = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
		args = append(args, url, limit)
	} else {
		q += ` ORDER BY created_at DESC, id DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.ScanError{}
	for rows.Next() {
		var e domain.ScanError
		if err := rows.Scan(&e.ID, &e.URL, &e.Phase, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
