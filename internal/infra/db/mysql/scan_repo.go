package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
	"github.com/bryanwahyu/visiai/internal/infra/db"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Save inserts a scan record; records are written once and never updated.
func (r *ScanRepository) Save(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO visiai_scans (` + db.ColumnList + `)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	cols, err := db.EncodeScan(s)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, cols.Args()...); err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}
	return nil
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	const q = `SELECT ` + db.ColumnList + ` FROM visiai_scans WHERE id=? LIMIT 1`

	var cols db.ScanColumns
	if err := r.db.QueryRowContext(ctx, q, string(id)).Scan(cols.Dest()...); err != nil {
		return nil, err
	}
	return cols.Decode()
}

// Delete removes a scan; sql.ErrNoRows when nothing matched.
func (r *ScanRepository) Delete(ctx context.Context, id domain.ScanID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM visiai_scans WHERE id=?`, string(id))
	if err != nil {
		return fmt.Errorf("deleting scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Paginate with offset + limit (classic pagination), newest first
func (r *ScanRepository) Paginate(ctx context.Context, page, pageSize int, includeScreenshot bool) (domain.PaginatedResult, error) {
	page, pageSize, offset := db.Page(page, pageSize)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visiai_scans`).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("counting scans: %w", err)
	}

	query := `SELECT ` + db.SelectList(includeScreenshot) + ` FROM visiai_scans
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var out []*domain.Scan
	for rows.Next() {
		var cols db.ScanColumns
		if err := rows.Scan(cols.Dest()...); err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		s, err := cols.Decode()
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}
	return domain.NewPaginatedResult(out, page, pageSize, total), nil
}
