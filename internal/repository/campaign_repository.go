package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = contentColumns + ", name, channel, subject, preview_text, body, scheduled_at"

func (r *CampaignRepository) table() contentTable {
	return contentTable{db: r.DB, name: "campaigns", resource: "campaign"}
}

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	c := &model.Campaign{}
	args := append(contentScanArgs(&c.Content), &c.Name, &c.Channel, &c.Subject, &c.PreviewText, &c.Body, &c.ScheduledAt)
	if err := row.Scan(args...); err != nil {
		return nil, err
	}
	return c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
        INSERT INTO campaigns (id, tenant_id, status, rejection_reason, created_by, name, channel, subject, preview_text, body, scheduled_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		c.ID, c.TenantID, c.Status, c.RejectionReason, c.CreatedBy,
		c.Name, c.Channel, c.Subject, c.PreviewText, c.Body, c.ScheduledAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return r.table().writeErr(err, c.ID, "insert campaigns")
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.table().notFound(err, id, "select campaigns")
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, filter model.ContentFilter) ([]*model.Campaign, int, error) {
	t := r.table()
	where, args := t.where(filter, "name", "subject")
	query, pageArgs := page(`SELECT `+campaignColumns+` FROM campaigns`+where, args, filter)

	rows, err := r.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, appErrors.NewStoreError("list campaigns", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, appErrors.NewStoreError("scan campaigns", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.NewStoreError("iterate campaigns", err)
	}

	total, err := t.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (r *CampaignRepository) UpdatePayload(ctx context.Context, c *model.Campaign, expected model.Status) error {
	query := `
        UPDATE campaigns
        SET name=$1, channel=$2, subject=$3, preview_text=$4, body=$5, scheduled_at=$6, updated_at=NOW()
        WHERE id=$7 AND status=$8
    `
	res, err := r.DB.ExecContext(ctx, query, c.Name, c.Channel, c.Subject, c.PreviewText, c.Body, c.ScheduledAt, c.ID, expected)
	if err != nil {
		return r.table().writeErr(err, c.ID, "update campaigns")
	}
	return r.table().checkAffected(ctx, res, c.ID, expected)
}

// TransitionStatus writes the rejection reason the same way blog and social posts do,
// so a campaign never keeps a stale reason after leaving the rejected state.
func (r *CampaignRepository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error {
	return r.table().transition(ctx, id, expected, to, reason)
}

func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID, expected model.Status) error {
	return r.table().delete(ctx, id, expected)
}

func (r *CampaignRepository) CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error) {
	return r.table().countByStatus(ctx, tenantID)
}

var _ ContentRepositoryInterface[*model.Campaign] = (*CampaignRepository)(nil)
