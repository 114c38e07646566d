// Command seed loads demo catalog data, an admin account and a promotion
// into the database for local development.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiyeni/storefront/internal/adapter/storage"
	"github.com/tiyeni/storefront/internal/config"
	"github.com/tiyeni/storefront/internal/core/domain"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("open mysql", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping mysql", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	now := time.Now()

	items := []struct {
		item  domain.Item
		stock int
	}{
		{
			item: domain.Item{
				Kind: domain.ItemKindProduct, Name: "Chitenje Fabric (2m)", Category: "clothing",
				Description: "Hand-printed wax cotton, assorted patterns.",
				Price:       850000, Currency: cfg.Currency, Active: true,
			},
			stock: 120,
		},
		{
			item: domain.Item{
				Kind: domain.ItemKindProduct, Name: "Mzuzu Coffee Beans 500g", Category: "food",
				Description: "Medium roast arabica from the Viphya highlands.",
				Price:       1200000, Currency: cfg.Currency, Active: true,
			},
			stock: 60,
		},
		{
			item: domain.Item{
				Kind: domain.ItemKindService, Name: "Tailoring Fitting", Category: "tailoring",
				Description: "One-hour fitting and alteration session.",
				Price:       1500000, Currency: cfg.Currency, Active: true,
				DurationMin: 60, Capacity: 2,
			},
		},
	}

	for _, entry := range items {
		entry.item.ID = uuid.NewString()
		entry.item.CreatedAt = now
		entry.item.UpdatedAt = now
		if err := mysqlAdapter.CreateItem(ctx, entry.item); err != nil {
			logger.Error("seed item", "name", entry.item.Name, "error", err)
			os.Exit(1)
		}
		if entry.item.Kind == domain.ItemKindProduct {
			if err := mysqlAdapter.UpsertInventory(ctx, entry.item.ID, entry.stock); err != nil {
				logger.Error("seed inventory", "name", entry.item.Name, "error", err)
				os.Exit(1)
			}
			if err := redisAdapter.SetStock(ctx, entry.item.ID, entry.stock); err != nil {
				logger.Warn("seed cached stock", "name", entry.item.Name, "error", err)
			}
		}
		logger.Info("seeded item", "name", entry.item.Name, "id", entry.item.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme-admin"), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash admin password", "error", err)
		os.Exit(1)
	}
	admin := domain.User{
		ID:           uuid.NewString(),
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := mysqlAdapter.CreateUser(ctx, admin); err != nil {
		logger.Error("seed admin", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded admin", "email", admin.Email)

	promo := domain.Promotion{
		ID:         uuid.NewString(),
		Code:       "KARIBU10",
		Kind:       domain.PromotionKindPercent,
		Value:      1000,
		StartsAt:   now,
		EndsAt:     now.AddDate(0, 1, 0),
		UsageLimit: 100,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := mysqlAdapter.CreatePromotion(ctx, promo); err != nil {
		logger.Error("seed promotion", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded promotion", "code", promo.Code)
}
