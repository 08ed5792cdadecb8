// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/config"
	"github.com/your-org/tshirt-store/internal/domain/catalog"
	"github.com/your-org/tshirt-store/internal/domain/orderstore"
	"github.com/your-org/tshirt-store/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every table owned by Postgres. Order records are included
// only when Postgres backs the order store.
func Models(orderStoreDriver string) []interface{} {
	models := []interface{}{
		&catalog.Product{},
		&user.User{},
	}
	if orderStoreDriver == "postgres" {
		models = append(models, &orderstore.Record{})
	}
	return models
}

// RunAutoMigrations runs GORM auto-migrations for the given models
func (m *Migration) RunAutoMigrations(models ...interface{}) error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes adds indexes GORM tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_featured ON products(category, featured)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",
	}
	if m.db.Migrator().HasTable(&orderstore.Record{}) {
		indexes = append(indexes,
			"CREATE INDEX IF NOT EXISTS idx_order_records_user_created ON order_records(user_id, created_at DESC)",
		)
	}

	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedInitialData loads the catalog and the admin account
func (m *Migration) SeedInitialData(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.SeedCatalog {
		products := catalog.SeedProducts()
		if err := catalog.NewGormRepository(m.db).Seed(ctx, products); err != nil {
			return err
		}
		m.logger.WithField("products", len(products)).Info("Catalog seeded")
	}

	if cfg.Security.AdminEmail != "" && cfg.Security.AdminPasswordHash != "" {
		if err := user.NewGormRepository(m.db).EnsureAdmin(ctx, cfg.Security.AdminEmail, cfg.Security.AdminPasswordHash); err != nil {
			return err
		}
		m.logger.WithField("email", cfg.Security.AdminEmail).Info("Admin user ensured")
	}

	return nil
}
