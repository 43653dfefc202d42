package progressionservice

import (
	"context"
	"errors"
	"testing"

	progressionevents "github.com/ig0rayres/legendario-engine/app/modules/progression/domain/events"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

func TestProgressionService_AdjustPoints_Validation(t *testing.T) {
	tests := []struct {
		name   string
		userID sharedtypes.UserID
		delta  int64
		reason string
	}{
		{name: "missing user id", userID: "", delta: 10, reason: "fix"},
		{name: "zero delta", userID: "u-1", delta: 0, reason: "fix"},
		{name: "missing reason", userID: "u-1", delta: 10, reason: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(NewFakeProgressionRepo(), nil, nil)

			got, err := svc.AdjustPoints(context.Background(), tt.userID, tt.delta, tt.reason)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if !got.IsFailure() || !errors.Is(*got.Failure, apperrors.ErrValidation) {
				t.Fatalf("expected validation failure, got: %+v", got)
			}
		})
	}
}

func TestProgressionService_AdjustPoints_UserNotFound(t *testing.T) {
	svc := newTestService(NewFakeProgressionRepo(), nil, nil)

	got, err := svc.AdjustPoints(context.Background(), "ghost", 50, "imported balance")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsFailure() || !errors.Is(*got.Failure, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found failure, got: %+v", got)
	}
}

func TestProgressionService_AdjustPoints_BypassesMultiplier(t *testing.T) {
	repo := NewFakeProgressionRepo()
	repo.Seed("u-1", 100, 0, "novice", "premium")
	svc := newTestService(repo, nil, nil)

	got, err := svc.AdjustPoints(context.Background(), "u-1", 50, "support credit")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success result, got: %+v", got)
	}
	if got.Success.NewTotal != 150 {
		t.Errorf("expected raw delta applied, got total %d", got.Success.NewTotal)
	}

	history := repo.History()
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	entry := history[0]
	if entry.ActionType != sharedtypes.ActionManualAdjustment {
		t.Errorf("expected manual_adjustment action, got %q", entry.ActionType)
	}
	if entry.Points != 50 || entry.Metadata["multiplier"] != float64(1) {
		t.Errorf("expected unmultiplied entry, got: %+v", entry)
	}
	if entry.Description != "support credit" {
		t.Errorf("expected reason in description, got %q", entry.Description)
	}
}

func TestProgressionService_AdjustPoints_NegativeDeltaDemotes(t *testing.T) {
	repo := NewFakeProgressionRepo()
	repo.Seed("u-1", 1000, 200, "expert", "")
	bus := &FakeEventBus{}
	svc := newTestService(repo, &FakeSeasonGateway{SeasonID: "season-1", Active: true}, bus)

	got, err := svc.AdjustPoints(context.Background(), "u-1", -400, "duplicate award reversal")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success result, got: %+v", got)
	}
	if got.Success.NewTotal != 600 {
		t.Errorf("expected total 600, got %d", got.Success.NewTotal)
	}

	change := got.Success.RankChange
	if change == nil || !change.Changed || change.NewRankID != "skilled" {
		t.Fatalf("expected demotion to skilled, got: %+v", change)
	}

	state := repo.states["u-1"]
	if state.SeasonPoints != 0 {
		t.Errorf("expected season counter floored at zero, got %d", state.SeasonPoints)
	}

	topics := bus.Topics()
	if len(topics) != 1 || topics[0] != progressionevents.TopicRankChanged {
		t.Errorf("expected a single rank-changed event, got: %v", topics)
	}
}

func TestProgressionService_AdjustPoints_FloorsAtZero(t *testing.T) {
	repo := NewFakeProgressionRepo()
	repo.Seed("u-1", 100, 50, "novice", "")
	svc := newTestService(repo, nil, nil)

	got, err := svc.AdjustPoints(context.Background(), "u-1", -500, "chargeback")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() || got.Success.NewTotal != 0 {
		t.Fatalf("expected counter floored at zero, got: %+v", got)
	}
}
