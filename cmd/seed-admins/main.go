// Command seed-admins upserts admin console accounts from a YAML file.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wekeepgrowing/storefront/internal/adapter/repository"
	"github.com/wekeepgrowing/storefront/internal/config"
	"github.com/wekeepgrowing/storefront/internal/infrastructure/database"
	"github.com/wekeepgrowing/storefront/pkg/logger"
)

func main() {
	path := flag.String("file", "configs/admins.yaml", "admins YAML file")
	migrate := flag.Bool("migrate", true, "run database migrations first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	admins, err := loadAdminsFromYAML(*path, bcrypt.DefaultCost)
	if err != nil {
		zlog.Fatal("Failed to load admins", zap.String("path", *path), zap.Error(err))
	}
	if len(admins) == 0 {
		zlog.Warn("No admins to seed", zap.String("path", *path))
		return
	}

	db, err := database.NewConnection(ctx, &cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zlog); err != nil {
			zlog.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if *migrate {
		if err := database.Migrate(db, zlog); err != nil {
			zlog.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	repo := repository.NewAdminUserRepository(db)
	for _, admin := range admins {
		if err := repo.Upsert(ctx, admin.Username, admin.PasswordHash); err != nil {
			zlog.Fatal("Failed to upsert admin", zap.String("username", admin.Username), zap.Error(err))
		}
		zlog.Info("Admin seeded", zap.String("username", admin.Username))
	}

	zlog.Info("Admin seeding completed", zap.Int("count", len(admins)))
}
