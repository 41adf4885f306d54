package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

type BlogPostRepository struct {
	DB *sql.DB
}

const blogPostColumns = contentColumns + ", title, slug, content, excerpt, featured_image, tags"

func (r *BlogPostRepository) table() contentTable {
	return contentTable{db: r.DB, name: "blog_posts", resource: "blog post"}
}

func scanBlogPost(row interface{ Scan(...any) error }) (*model.BlogPost, error) {
	p := &model.BlogPost{}
	args := append(contentScanArgs(&p.Content), &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.FeaturedImage, pq.Array(&p.Tags))
	if err := row.Scan(args...); err != nil {
		return nil, err
	}
	return p, nil
}

// ====================== Blog post CRUD ======================

func (r *BlogPostRepository) Create(ctx context.Context, p *model.BlogPost) error {
	query := `
        INSERT INTO blog_posts (id, tenant_id, status, rejection_reason, created_by, title, slug, content, excerpt, featured_image, tags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		p.ID, p.TenantID, p.Status, p.RejectionReason, p.CreatedBy,
		p.Title, p.Slug, p.Body, p.Excerpt, p.FeaturedImage, pq.Array(p.Tags),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return r.table().writeErr(err, p.ID, "insert blog_posts")
	}
	return nil
}

func (r *BlogPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE id=$1`
	p, err := scanBlogPost(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.table().notFound(err, id, "select blog_posts")
	}
	return p, nil
}

func (r *BlogPostRepository) List(ctx context.Context, filter model.ContentFilter) ([]*model.BlogPost, int, error) {
	t := r.table()
	where, args := t.where(filter, "title", "content", "excerpt")
	query, pageArgs := page(`SELECT `+blogPostColumns+` FROM blog_posts`+where, args, filter)

	rows, err := r.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, appErrors.NewStoreError("list blog_posts", err)
	}
	defer rows.Close()

	posts := []*model.BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, 0, appErrors.NewStoreError("scan blog_posts", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.NewStoreError("iterate blog_posts", err)
	}

	total, err := t.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *BlogPostRepository) UpdatePayload(ctx context.Context, p *model.BlogPost, expected model.Status) error {
	query := `
        UPDATE blog_posts
        SET title=$1, slug=$2, content=$3, excerpt=$4, featured_image=$5, tags=$6, updated_at=NOW()
        WHERE id=$7 AND status=$8
    `
	res, err := r.DB.ExecContext(ctx, query, p.Title, p.Slug, p.Body, p.Excerpt, p.FeaturedImage, pq.Array(p.Tags), p.ID, expected)
	if err != nil {
		return r.table().writeErr(err, p.ID, "update blog_posts")
	}
	return r.table().checkAffected(ctx, res, p.ID, expected)
}

func (r *BlogPostRepository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error {
	return r.table().transition(ctx, id, expected, to, reason)
}

func (r *BlogPostRepository) Delete(ctx context.Context, id uuid.UUID, expected model.Status) error {
	return r.table().delete(ctx, id, expected)
}

func (r *BlogPostRepository) CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error) {
	return r.table().countByStatus(ctx, tenantID)
}

// SlugExists reports whether a post other than excludeID already uses slug.
func (r *BlogPostRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug=$1 AND id<>$2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, appErrors.NewStoreError("select blog_posts slug", err)
	}
	return exists, nil
}

var (
	_ ContentRepositoryInterface[*model.BlogPost] = (*BlogPostRepository)(nil)
	_ SlugLookup                                  = (*BlogPostRepository)(nil)
)
