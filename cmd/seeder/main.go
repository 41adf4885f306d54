package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/agency-portal-backend/internal/auth"
	"github.com/unclebandit/agency-portal-backend/internal/config"
	"github.com/unclebandit/agency-portal-backend/internal/db"
	"github.com/unclebandit/agency-portal-backend/internal/logging"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

// Fixed IDs keep dev tokens valid across reseeds.
var demoClients = []model.Client{
	{ID: uuid.MustParse("8f5c2a4e-1d3b-4c6a-9e7f-0a1b2c3d4e01"), Name: "Acme Coffee", ContactEmail: "marketing@acme.test", Active: true},
	{ID: uuid.MustParse("8f5c2a4e-1d3b-4c6a-9e7f-0a1b2c3d4e02"), Name: "Globex Fitness", ContactEmail: "hello@globex.test", Active: true},
	{ID: uuid.MustParse("8f5c2a4e-1d3b-4c6a-9e7f-0a1b2c3d4e03"), Name: "Initech Legal", ContactEmail: "ops@initech.test", Active: false},
}

var agencyAdminID = uuid.MustParse("2b7d9e10-5a4c-4f3e-8d21-6c0b9a8e7f01")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		logger.Fatal("refusing to seed a production database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	clients := &repository.ClientRepository{DB: conn}
	for i := range demoClients {
		if err := clients.Upsert(ctx, &demoClients[i]); err != nil {
			logger.Fatal("seed client", zap.String("name", demoClients[i].Name), zap.Error(err))
		}
		logger.Info("seeded client", zap.String("client_id", demoClients[i].ID.String()), zap.String("name", demoClients[i].Name))
	}

	secret := []byte(cfg.JWTSecret)
	printToken(secret, cfg.TokenTTL, "agency admin", model.Actor{UserID: agencyAdminID, Role: model.RoleAgencyAdmin})
	for i, c := range demoClients {
		printToken(secret, cfg.TokenTTL, c.Name+" admin", model.Actor{
			UserID:   uuid.NewSHA1(c.ID, []byte("admin")),
			Role:     model.RoleClientAdmin,
			TenantID: c.ID,
		})
		if i == 0 {
			printToken(secret, cfg.TokenTTL, c.Name+" user", model.Actor{
				UserID:   uuid.NewSHA1(c.ID, []byte("user")),
				Role:     model.RoleClientUser,
				TenantID: c.ID,
			})
		}
	}

	fmt.Println("Database seeding completed successfully!")
}

func printToken(secret []byte, ttl time.Duration, label string, actor model.Actor) {
	token, err := auth.IssueToken(secret, actor, ttl)
	if err != nil {
		log.Fatalf("issue token for %s: %v", label, err)
	}
	fmt.Printf("%-22s %s\n", label+":", token)
}
