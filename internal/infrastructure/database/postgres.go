package database

import (
	"fmt"
	"log"
	"time"

	migrate "github.com/rubenv/sql-migrate"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// Direction selects which way migrations run
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// NewPostgresDB opens the durable store used for calls, rosters and attendance
func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.Server.Environment == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	return db, nil
}

// Migrate applies (or with Down, rolls back) the sql-migrate files in dir.
// limit caps the number of steps; 0 means all.
func Migrate(db *gorm.DB, dir string, direction Direction, limit int) (int, error) {
	if dir == "" {
		dir = "migrations"
	}
	source := &migrate.FileMigrationSource{Dir: dir}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate %s: %w", direction, err)
	}

	md := migrate.Up
	if direction == Down {
		md = migrate.Down
	}

	log.Printf("🔄 Applying migrations %s from %s/ using sql-migrate...", direction, dir)
	n, err := migrate.ExecMax(sqlDB, "postgres", source, md, limit)
	if err != nil {
		return n, fmt.Errorf("failed to apply migration: %w", err)
	}

	log.Printf("✅ Applied %d migrations!\n", n)
	return n, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("✅ Database connection closed")
	return nil
}
