package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
)

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := dbtest.Open(t)
	h := newPGHandler(db, time.Hour)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("boom", "path", "/api/jobs", "error", errors.New("db down").Error(), "user_id", "u-1", "attempt", 2)
	h.Stop()
	h.Stop()

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(logs))
	}
	got := logs[0]
	if got.Message != "boom" || got.RequestID != "req-1" || got.Path != "/api/jobs" || got.Error != "db down" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.UserID == nil || *got.UserID != "u-1" {
		t.Fatalf("expected user id, got %v", got.UserID)
	}
	if string(got.Extra) != `{"attempt":2}` {
		t.Fatalf("unexpected extra %s", got.Extra)
	}
}

func TestPGHandlerLevel(t *testing.T) {
	h := &PGHandler{}
	if h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected warn to be skipped")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected error to be handled")
	}
}
