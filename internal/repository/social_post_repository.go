package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

type SocialPostRepository struct {
	DB *sql.DB
}

const socialPostColumns = contentColumns + ", platform, content, media_urls, hashtags, scheduled_for"

func (r *SocialPostRepository) table() contentTable {
	return contentTable{db: r.DB, name: "social_posts", resource: "social post"}
}

func scanSocialPost(row interface{ Scan(...any) error }) (*model.SocialPost, error) {
	p := &model.SocialPost{}
	args := append(contentScanArgs(&p.Content), &p.Platform, &p.Body, pq.Array(&p.MediaURLs), pq.Array(&p.Hashtags), &p.ScheduledFor)
	if err := row.Scan(args...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SocialPostRepository) Create(ctx context.Context, p *model.SocialPost) error {
	query := `
        INSERT INTO social_posts (id, tenant_id, status, rejection_reason, created_by, platform, content, media_urls, hashtags, scheduled_for, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		p.ID, p.TenantID, p.Status, p.RejectionReason, p.CreatedBy,
		p.Platform, p.Body, pq.Array(p.MediaURLs), pq.Array(p.Hashtags), p.ScheduledFor,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return r.table().writeErr(err, p.ID, "insert social_posts")
	}
	return nil
}

func (r *SocialPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SocialPost, error) {
	query := `SELECT ` + socialPostColumns + ` FROM social_posts WHERE id=$1`
	p, err := scanSocialPost(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.table().notFound(err, id, "select social_posts")
	}
	return p, nil
}

func (r *SocialPostRepository) List(ctx context.Context, filter model.ContentFilter) ([]*model.SocialPost, int, error) {
	t := r.table()
	where, args := t.where(filter, "content", "platform")
	query, pageArgs := page(`SELECT `+socialPostColumns+` FROM social_posts`+where, args, filter)

	rows, err := r.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, appErrors.NewStoreError("list social_posts", err)
	}
	defer rows.Close()

	posts := []*model.SocialPost{}
	for rows.Next() {
		p, err := scanSocialPost(rows)
		if err != nil {
			return nil, 0, appErrors.NewStoreError("scan social_posts", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.NewStoreError("iterate social_posts", err)
	}

	total, err := t.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *SocialPostRepository) UpdatePayload(ctx context.Context, p *model.SocialPost, expected model.Status) error {
	query := `
        UPDATE social_posts
        SET platform=$1, content=$2, media_urls=$3, hashtags=$4, scheduled_for=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7
    `
	res, err := r.DB.ExecContext(ctx, query, p.Platform, p.Body, pq.Array(p.MediaURLs), pq.Array(p.Hashtags), p.ScheduledFor, p.ID, expected)
	if err != nil {
		return r.table().writeErr(err, p.ID, "update social_posts")
	}
	return r.table().checkAffected(ctx, res, p.ID, expected)
}

func (r *SocialPostRepository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error {
	return r.table().transition(ctx, id, expected, to, reason)
}

func (r *SocialPostRepository) Delete(ctx context.Context, id uuid.UUID, expected model.Status) error {
	return r.table().delete(ctx, id, expected)
}

func (r *SocialPostRepository) CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error) {
	return r.table().countByStatus(ctx, tenantID)
}

var _ ContentRepositoryInterface[*model.SocialPost] = (*SocialPostRepository)(nil)
