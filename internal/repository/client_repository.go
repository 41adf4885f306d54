package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// ClientRepositoryInterface defines methods used by services and handlers
type ClientRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListAll(ctx context.Context) ([]model.Client, error)
}

// ClientRepository is the concrete implementation
type ClientRepository struct {
	DB *sql.DB
}

// GetByID fetches a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `
        SELECT id, name, contact_email, active, created_at
        FROM clients
        WHERE id = $1
    `
	var c model.Client
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.ContactEmail, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("client", id.String())
	}
	if err != nil {
		return nil, appErrors.NewStoreError("select clients", err)
	}
	return &c, nil
}

// ListAll fetches every client, ordered by name
func (r *ClientRepository) ListAll(ctx context.Context) ([]model.Client, error) {
	query := `
        SELECT id, name, contact_email, active, created_at
        FROM clients
        ORDER BY name
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, appErrors.NewStoreError("list clients", err)
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactEmail, &c.Active, &c.CreatedAt); err != nil {
			return nil, appErrors.NewStoreError("scan clients", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStoreError("iterate clients", err)
	}
	return clients, nil
}

// Upsert inserts c or refreshes its name, email and active flag.
func (r *ClientRepository) Upsert(ctx context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
        INSERT INTO clients (id, name, contact_email, active, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, contact_email=EXCLUDED.contact_email, active=EXCLUDED.active
        RETURNING created_at
    `
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.ContactEmail, c.Active).Scan(&c.CreatedAt)
	if err != nil {
		return appErrors.NewStoreError("upsert clients", err)
	}
	return nil
}

var _ ClientRepositoryInterface = (*ClientRepository)(nil)
