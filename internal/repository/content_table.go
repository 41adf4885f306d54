package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// ContentRepositoryInterface is implemented once per content kind.
// Every write that depends on the current status takes the status the caller read,
// and fails with a ConflictError when the row no longer has it.
type ContentRepositoryInterface[T model.Reviewable] interface {
	Create(ctx context.Context, item T) error
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context, filter model.ContentFilter) ([]T, int, error)
	UpdatePayload(ctx context.Context, item T, expected model.Status) error
	TransitionStatus(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error
	Delete(ctx context.Context, id uuid.UUID, expected model.Status) error
	CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error)
}

// SlugLookup is implemented by repositories of slugged kinds.
type SlugLookup interface {
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

const uniqueViolation = "23505"

// contentColumns are selected first by every content query, in this order.
const contentColumns = "id, tenant_id, status, rejection_reason, created_by, published_at, created_at, updated_at"

// contentTable implements the review columns shared by every content table.
type contentTable struct {
	db       *sql.DB
	name     string
	resource string
}

func contentScanArgs(c *model.Content) []any {
	return []any{&c.ID, &c.TenantID, &c.Status, &c.RejectionReason, &c.CreatedBy, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt}
}

func (t contentTable) transition(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error {
	query := fmt.Sprintf(`
        UPDATE %s SET status=$1, rejection_reason=$2, updated_at=NOW(),
            published_at = CASE WHEN $1 = 'published' THEN NOW() ELSE published_at END
        WHERE id=$3 AND status=$4
    `, t.name)
	res, err := t.db.ExecContext(ctx, query, to, reason, id, expected)
	if err != nil {
		return appErrors.NewStoreError("update "+t.name+" status", err)
	}
	return t.checkAffected(ctx, res, id, expected)
}

func (t contentTable) delete(ctx context.Context, id uuid.UUID, expected model.Status) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND status=$2`, t.name)
	res, err := t.db.ExecContext(ctx, query, id, expected)
	if err != nil {
		return appErrors.NewStoreError("delete "+t.name, err)
	}
	return t.checkAffected(ctx, res, id, expected)
}

// checkAffected turns a zero-row conditional write into NotFound or Conflict.
func (t contentTable) checkAffected(ctx context.Context, res sql.Result, id uuid.UUID, expected model.Status) error {
	n, err := res.RowsAffected()
	if err != nil {
		return appErrors.NewStoreError("rows affected", err)
	}
	if n > 0 {
		return nil
	}

	var current model.Status
	query := fmt.Sprintf(`SELECT status FROM %s WHERE id=$1`, t.name)
	err = t.db.QueryRowContext(ctx, query, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NewNotFound(t.resource, id.String())
	}
	if err != nil {
		return appErrors.NewStoreError("select "+t.name+" status", err)
	}
	return appErrors.NewConflict(t.resource, id.String(),
		fmt.Sprintf("status changed from %s to %s by another request", expected, current))
}

func (t contentTable) countByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error) {
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s`, t.name)
	args := []any{}
	if tenantID != nil {
		query += ` WHERE tenant_id=$1`
		args = append(args, *tenantID)
	}
	query += ` GROUP BY status`

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, appErrors.NewStoreError("count "+t.name, err)
	}
	defer rows.Close()

	stats := map[model.Status]int{
		model.StatusDraft:         0,
		model.StatusPendingReview: 0,
		model.StatusApproved:      0,
		model.StatusRejected:      0,
		model.StatusPublished:     0,
	}
	for rows.Next() {
		var status model.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, appErrors.NewStoreError("scan "+t.name+" stats", err)
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStoreError("iterate "+t.name+" stats", err)
	}
	return stats, nil
}

// where builds the filter clause and its arguments, numbered from $1.
func (t contentTable) where(filter model.ContentFilter, searchCols ...string) (string, []any) {
	clause := " WHERE 1=1"
	args := []any{}

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		clause += fmt.Sprintf(" AND tenant_id=$%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clause += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" && len(searchCols) > 0 {
		args = append(args, "%"+escapeLike(search)+"%")
		parts := make([]string, len(searchCols))
		for i, col := range searchCols {
			parts[i] = fmt.Sprintf("%s ILIKE $%d", col, len(args))
		}
		clause += " AND (" + strings.Join(parts, " OR ") + ")"
	}
	return clause, args
}

func (t contentTable) count(ctx context.Context, where string, args []any) (int, error) {
	var total int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, t.name, where)
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, appErrors.NewStoreError("count "+t.name, err)
	}
	return total, nil
}

// page appends ordering and paging to a list query.
func page(query string, args []any, filter model.ContentFilter) (string, []any) {
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	return query, append(args, filter.Limit, filter.Offset)
}

func (t contentTable) notFound(err error, id uuid.UUID, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NewNotFound(t.resource, id.String())
	}
	return appErrors.NewStoreError(op, err)
}

// writeErr maps a unique violation to a ConflictError.
func (t contentTable) writeErr(err error, id uuid.UUID, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return appErrors.NewConflict(t.resource, id.String(), "duplicate "+pqErr.Constraint)
	}
	return appErrors.NewStoreError(op, err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
