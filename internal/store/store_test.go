package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "data", "onboard.db"))
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Repository{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestRepositorySessionLifecycle(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session, err := repo.CreateSession(ctx)
			if err != nil {
				t.Fatalf("CreateSession err: %v", err)
			}
			if session.ID == "" || session.CurrentStep != onboarding.StepZip {
				t.Fatalf("unexpected new session %+v", session)
			}

			done := time.Now().UTC()
			session.ZipCode = "12345"
			session.FullName = "John Smith"
			session.CurrentStep = onboarding.StepDone
			session.IsComplete = true
			session.CompletedAt = &done
			if err := repo.UpdateSession(ctx, session); err != nil {
				t.Fatalf("UpdateSession err: %v", err)
			}

			got, err := repo.GetSession(ctx, session.ID)
			if err != nil {
				t.Fatalf("GetSession err: %v", err)
			}
			if got.ZipCode != "12345" || got.FullName != "John Smith" || !got.IsComplete {
				t.Fatalf("update not persisted: %+v", got)
			}
			if got.CurrentStep != onboarding.StepDone {
				t.Fatalf("unexpected step %s", got.CurrentStep)
			}
			if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
				t.Fatalf("unexpected completedAt %v", got.CompletedAt)
			}
		})
	}
}

func TestRepositoryUnknownSession(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("GetSession: expected ErrSessionNotFound, got %v", err)
			}
			if err := repo.UpdateSession(ctx, onboarding.Session{ID: "missing"}); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("UpdateSession: expected ErrSessionNotFound, got %v", err)
			}
			if err := repo.SaveRecord(ctx, onboarding.Record{SessionID: "missing", Role: onboarding.RoleUser}); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("SaveRecord: expected ErrSessionNotFound, got %v", err)
			}
			if _, err := repo.LoadTranscript(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("LoadTranscript: expected ErrSessionNotFound, got %v", err)
			}
			if err := repo.SaveVehicle(ctx, "missing", onboarding.Vehicle{}); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("SaveVehicle: expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestRepositoryTranscriptOrder(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			session, err := repo.CreateSession(ctx)
			if err != nil {
				t.Fatalf("CreateSession err: %v", err)
			}

			turns := []onboarding.Record{
				{SessionID: session.ID, Role: onboarding.RoleUser, Content: "12345"},
				{SessionID: session.ID, Role: onboarding.RoleAssistant, Content: "Perfect! What's your full name?"},
				{SessionID: session.ID, Role: onboarding.RoleUser, Content: "John Smith"},
			}
			for _, rec := range turns {
				if err := repo.SaveRecord(ctx, rec); err != nil {
					t.Fatalf("SaveRecord err: %v", err)
				}
			}

			got, err := repo.LoadTranscript(ctx, session.ID)
			if err != nil {
				t.Fatalf("LoadTranscript err: %v", err)
			}
			if len(got) != len(turns) {
				t.Fatalf("expected %d records, got %d", len(turns), len(got))
			}
			for i := range turns {
				if got[i].Content != turns[i].Content || got[i].Role != turns[i].Role {
					t.Fatalf("record %d: want %+v, got %+v", i, turns[i], got[i])
				}
				if got[i].ID == "" || got[i].CreatedAt.IsZero() {
					t.Fatalf("record %d missing id or timestamp: %+v", i, got[i])
				}
			}
		})
	}
}

func TestRepositoryVehicles(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			session, err := repo.CreateSession(ctx)
			if err != nil {
				t.Fatalf("CreateSession err: %v", err)
			}

			commuter := onboarding.Vehicle{VIN: "1HGBH41JXMN109186", Use: onboarding.UseCommuting, BlindSpot: "yes", CommuteDays: "5", CommuteMiles: "12"}
			farm := onboarding.Vehicle{VIN: "2019 Ford F-150 Pickup", Use: onboarding.UseFarming, BlindSpot: "no", AnnualMileage: "15000"}
			for _, v := range []onboarding.Vehicle{commuter, farm} {
				if err := repo.SaveVehicle(ctx, session.ID, v); err != nil {
					t.Fatalf("SaveVehicle err: %v", err)
				}
			}

			got, err := repo.ListVehicles(ctx, session.ID)
			if err != nil {
				t.Fatalf("ListVehicles err: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 vehicles, got %d", len(got))
			}
			if got[0].VIN != commuter.VIN || got[0].CommuteMiles != "12" {
				t.Fatalf("unexpected first vehicle %+v", got[0])
			}
			if got[1].Use != onboarding.UseFarming || got[1].AnnualMileage != "15000" {
				t.Fatalf("unexpected second vehicle %+v", got[1])
			}
		})
	}
}

func TestRepositoryListSessionsFilter(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			open, err := repo.CreateSession(ctx)
			if err != nil {
				t.Fatalf("CreateSession err: %v", err)
			}
			finished, err := repo.CreateSession(ctx)
			if err != nil {
				t.Fatalf("CreateSession err: %v", err)
			}
			finished.IsComplete = true
			finished.CurrentStep = onboarding.StepDone
			if err := repo.UpdateSession(ctx, finished); err != nil {
				t.Fatalf("UpdateSession err: %v", err)
			}

			all, err := repo.ListSessions(ctx, ListFilter{})
			if err != nil {
				t.Fatalf("ListSessions err: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("expected 2 sessions, got %d", len(all))
			}

			yes, no := true, false
			complete, _ := repo.ListSessions(ctx, ListFilter{Complete: &yes})
			if len(complete) != 1 || complete[0].ID != finished.ID {
				t.Fatalf("unexpected complete sessions %+v", complete)
			}
			active, _ := repo.ListSessions(ctx, ListFilter{Complete: &no})
			if len(active) != 1 || active[0].ID != open.ID {
				t.Fatalf("unexpected active sessions %+v", active)
			}
		})
	}
}
