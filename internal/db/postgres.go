package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Windi-Fikriyansyah/gigflow/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  30 * time.Second,
	}
}

// Connect opens the gorm handle and waits for postgres to answer, backing off
// between attempts until ConnectTimeout.
func Connect(dsn string, opts Options) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	deadline := time.Now().Add(opts.ConnectTimeout)
	backoff := 500 * time.Millisecond
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := sqlDB.PingContext(ctx)
		cancel()
		if err == nil {
			return gdb, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		log.Printf("[db] postgres not ready yet: %v", err)
		time.Sleep(backoff)
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&models.Gig{}, &models.Bid{})
}
