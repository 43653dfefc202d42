package seasonintegrationtests

import (
	"errors"
	"testing"
	"time"

	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
)

func TestCreateSeasonPersistsScheduledWindow(t *testing.T) {
	deps := SetupTestSeasonService(t)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(60 * 24 * time.Hour)

	got, err := deps.Service.CreateSeason(deps.Ctx, seasonservice.CreateSeasonInput{
		Name:     "Temporada Q4",
		StartsAt: start.Format(time.RFC3339),
		EndsAt:   end.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateSeason returned error: %v", err)
	}
	if !got.IsSuccess() {
		t.Fatalf("expected success, got failure: %v", *got.Failure)
	}
	if got.Success.Status != seasondb.StatusScheduled {
		t.Errorf("status = %q, want scheduled", got.Success.Status)
	}

	stored, err := deps.Repo.GetSeason(deps.Ctx, nil, got.Success.ID)
	if err != nil {
		t.Fatalf("GetSeason returned error: %v", err)
	}
	if !stored.StartsAt.Equal(start) || !stored.EndsAt.Equal(end) {
		t.Errorf("stored window = (%v, %v), want (%v, %v)", stored.StartsAt, stored.EndsAt, start, end)
	}
}

func TestCreateSeasonRejectsOverlapInDatabase(t *testing.T) {
	deps := SetupTestSeasonService(t)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(60 * 24 * time.Hour)

	first, err := deps.Service.CreateSeason(deps.Ctx, seasonservice.CreateSeasonInput{
		Name:     "Temporada A",
		StartsAt: start.Format(time.RFC3339),
		EndsAt:   end.Format(time.RFC3339),
	})
	if err != nil || !first.IsSuccess() {
		t.Fatalf("seed season failed: %v %v", err, first.Failure)
	}

	got, err := deps.Service.CreateSeason(deps.Ctx, seasonservice.CreateSeasonInput{
		Name:     "Temporada B",
		StartsAt: start.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		EndsAt:   end.Add(30 * 24 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateSeason returned error: %v", err)
	}
	if !got.IsFailure() {
		t.Fatalf("expected overlap failure")
	}
	if !errors.Is(*got.Failure, apperrors.ErrConflict) {
		t.Errorf("failure = %v, want ErrConflict", *got.Failure)
	}
}

func TestFinishedSeasonDoesNotBlockNewWindow(t *testing.T) {
	deps := SetupTestSeasonService(t)

	now := time.Now().UTC()
	insertSeason(t, deps, "Temporada Passada", seasondb.StatusFinished,
		now.Add(-72*time.Hour), now.Add(72*time.Hour))

	got, err := deps.Service.CreateSeason(deps.Ctx, seasonservice.CreateSeasonInput{
		Name:     "Temporada Nova",
		StartsAt: now.Add(24 * time.Hour).Format(time.RFC3339),
		EndsAt:   now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateSeason returned error: %v", err)
	}
	if !got.IsSuccess() {
		t.Errorf("expected success over a finished season, got failure: %v", *got.Failure)
	}
}
