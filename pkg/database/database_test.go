package database

import (
	"context"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/model"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestSeedQuestionsOnlyWhenEmpty verifies the embedded bank is loaded once.
func TestSeedQuestionsOnlyWhenEmpty(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed?mode=memory&cache=shared"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	n, err := SeedQuestions(context.Background(), db)
	if err != nil || n == 0 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	again, err := SeedQuestions(context.Background(), db)
	if err != nil || again != 0 {
		t.Fatalf("second seed: n=%d err=%v", again, err)
	}

	var rows []model.Question
	if err := db.Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		if _, err := row.ToQuiz(); err != nil {
			t.Fatalf("seeded row %d does not normalize: %v", row.ID, err)
		}
	}
}

// TestDialectorRejectsUnknownDriver verifies driver selection.
func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := dialector(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	d, err := dialector(&config.DatabaseConfig{Driver: config.DriverMySQL, Host: "db", Port: 3306})
	if err != nil || d.Name() != "mysql" {
		t.Fatalf("mysql dialector: %v", err)
	}
	d, err = dialector(&config.DatabaseConfig{Driver: config.DriverPostgres, Host: "db", Port: 5432})
	if err != nil || d.Name() != "postgres" {
		t.Fatalf("postgres dialector: %v", err)
	}
}
