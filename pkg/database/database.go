package database

import (
	"context"
	"fmt"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return postgres.Open(cfg.DSN()), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func logLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// InitDB opens the configured database. Tables are migrated in debug mode
// or when the -migrate flag is set.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(&cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(cfg.Database.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Database.Driver))

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Log.Info("Database migration completed")

		if n, err := SeedQuestions(context.Background(), db); err != nil {
			logger.Log.Warn("Failed to seed questions", zap.Error(err))
		} else if n > 0 {
			logger.Log.Info("Seeded question bank", zap.Int("count", n))
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// SeedQuestions fills an empty questions table from the embedded bank.
func SeedQuestions(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Question{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	bank, err := quiz.DefaultBank()
	if err != nil {
		return 0, err
	}
	all, err := bank.Questions(ctx, quiz.Filter{})
	if err != nil {
		return 0, err
	}
	rows := make([]model.Question, 0, len(all))
	for _, q := range all {
		rows = append(rows, model.QuestionFromQuiz(q))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
