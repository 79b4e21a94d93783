package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialnet/internal/config"
	"socialnet/internal/models"

	"github.com/sirupsen/logrus"
)

// InitDB initializes the database connection using the provided configuration.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dsn string
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		var dsnParts []string
		dsnParts = append(dsnParts, fmt.Sprintf("host=%s", cfg.Host))
		dsnParts = append(dsnParts, fmt.Sprintf("port=%d", cfg.Port))
		dsnParts = append(dsnParts, fmt.Sprintf("user=%s", cfg.User))
		dsnParts = append(dsnParts, fmt.Sprintf("dbname=%s", cfg.DBName))

		if cfg.Password != "" {
			dsnParts = append(dsnParts, fmt.Sprintf("password=%s", cfg.Password))
		}

		dsnParts = append(dsnParts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))

		dsn = strings.Join(dsnParts, " ")
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// Translate driver duplicate-key errors into gorm.ErrDuplicatedKey
		// so services can map them to business errors.
		TranslateError: true,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// activePairIndexSQL enforces at most one non-rejected friend request per
// unordered user pair, regardless of direction. This is the store-level
// guarantee that makes concurrent duplicate sends lose cleanly.
const activePairIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_active_pair
ON friend_requests (
	LEAST(requester_user_id, recipient_user_id),
	GREATEST(requester_user_id, recipient_user_id)
)
WHERE status IN ('pending', 'accepted') AND deleted_at IS NULL`

// AutoMigrateTables runs GORM's auto-migration for all defined models and
// installs the partial unique index guarding the friend-request pair.
func AutoMigrateTables(db *gorm.DB) error {
	logrus.Info("Starting database schema migration...")
	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	if err := db.Exec(activePairIndexSQL).Error; err != nil {
		return fmt.Errorf("failed to create active-pair unique index: %w", err)
	}

	logrus.Info("Database migration complete.")
	return nil
}
