package seasonservice

import (
	"context"
	"errors"
	"testing"
	"time"

	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
)

func fixedNow() time.Time {
	return time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)
}

func TestSeasonService_CreateSeason_AcceptsRFC3339(t *testing.T) {
	repo := NewFakeSeasonRepo()
	svc := newTestService(repo, testServiceOpts{now: fixedNow})

	got, err := svc.CreateSeason(context.Background(), CreateSeasonInput{
		Name:     "Q2",
		StartsAt: "2026-04-01T00:00:00Z",
		EndsAt:   "2026-07-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success result, got: %+v", got)
	}
	view := *got.Success
	if view.Status != seasondb.StatusScheduled {
		t.Errorf("expected scheduled status, got %q", view.Status)
	}
	if !view.StartsAt.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected starts_at: %v", view.StartsAt)
	}
}

func TestSeasonService_CreateSeason_AcceptsPlainDate(t *testing.T) {
	svc := newTestService(NewFakeSeasonRepo(), testServiceOpts{now: fixedNow})

	got, err := svc.CreateSeason(context.Background(), CreateSeasonInput{
		Name:     "Q2",
		StartsAt: "2026-04-01",
		EndsAt:   "2026-07-01",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success result, got: %+v", got)
	}
	if got.Success.StartsAt.Month() != time.April {
		t.Errorf("unexpected starts_at: %v", got.Success.StartsAt)
	}
}

func TestSeasonService_CreateSeason_AcceptsNaturalLanguage(t *testing.T) {
	svc := newTestService(NewFakeSeasonRepo(), testServiceOpts{now: fixedNow})

	got, err := svc.CreateSeason(context.Background(), CreateSeasonInput{
		Name:     "Spring",
		StartsAt: "tomorrow",
		EndsAt:   "in 3 months",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success result, got: %+v", got)
	}
	if !got.Success.StartsAt.After(fixedNow()) {
		t.Errorf("expected starts_at after now, got: %v", got.Success.StartsAt)
	}
	if !got.Success.EndsAt.After(got.Success.StartsAt) {
		t.Errorf("expected ends_at after starts_at, got: %v", got.Success.EndsAt)
	}
}

func TestSeasonService_CreateSeason_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateSeasonInput
	}{
		{
			name:  "missing name",
			input: CreateSeasonInput{StartsAt: "2026-04-01", EndsAt: "2026-07-01"},
		},
		{
			name:  "unparseable start",
			input: CreateSeasonInput{Name: "Q2", StartsAt: "whenever", EndsAt: "2026-07-01"},
		},
		{
			name:  "empty end",
			input: CreateSeasonInput{Name: "Q2", StartsAt: "2026-04-01", EndsAt: ""},
		},
		{
			name:  "window ends before it starts",
			input: CreateSeasonInput{Name: "Q2", StartsAt: "2026-07-01", EndsAt: "2026-04-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(NewFakeSeasonRepo(), testServiceOpts{now: fixedNow})

			got, err := svc.CreateSeason(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if !got.IsFailure() || !errors.Is(*got.Failure, apperrors.ErrValidation) {
				t.Fatalf("expected validation failure, got: %+v", got)
			}
		})
	}
}

func TestSeasonService_CreateSeason_OverlapIsConflict(t *testing.T) {
	repo := NewFakeSeasonRepo()
	repo.Add(&seasondb.Season{
		ID:       "existing",
		Name:     "Q1",
		StartsAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		Status:   seasondb.StatusActive,
	})
	svc := newTestService(repo, testServiceOpts{now: fixedNow})

	got, err := svc.CreateSeason(context.Background(), CreateSeasonInput{
		Name:     "Q1.5",
		StartsAt: "2026-03-01",
		EndsAt:   "2026-05-01",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsFailure() || !errors.Is(*got.Failure, apperrors.ErrConflict) {
		t.Fatalf("expected conflict failure, got: %+v", got)
	}
}

func TestSeasonService_CreateSeason_FinishedSeasonDoesNotBlock(t *testing.T) {
	repo := NewFakeSeasonRepo()
	repo.Add(&seasondb.Season{
		ID:       "old",
		Name:     "Q1",
		StartsAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		Status:   seasondb.StatusFinished,
	})
	svc := newTestService(repo, testServiceOpts{now: fixedNow})

	got, err := svc.CreateSeason(context.Background(), CreateSeasonInput{
		Name:     "Rematch",
		StartsAt: "2026-02-01",
		EndsAt:   "2026-03-01",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success over a finished season's window, got: %+v", got)
	}
}
