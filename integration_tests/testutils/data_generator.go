package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// TestDataGenerator seeds members, subscriptions, and seasons for
// integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	var s uint64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = uint64(time.Now().UnixNano())
	}
	return &TestDataGenerator{faker: gofakeit.New(s)}
}

// CreateUser inserts a member row and returns its ID.
func (g *TestDataGenerator) CreateUser(ctx context.Context, db bun.IDB) (sharedtypes.UserID, error) {
	id := sharedtypes.UserID(uuid.NewString())
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, email, is_system_account) VALUES (?, ?, FALSE)",
		id.String(), g.faker.Email())
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// CreateSystemUser inserts a member flagged as a system account.
func (g *TestDataGenerator) CreateSystemUser(ctx context.Context, db bun.IDB) (sharedtypes.UserID, error) {
	id := sharedtypes.UserID(uuid.NewString())
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, email, is_system_account) VALUES (?, ?, TRUE)",
		id.String(), g.faker.Email())
	if err != nil {
		return "", fmt.Errorf("insert system user: %w", err)
	}
	return id, nil
}

// CreateUserWithEmail inserts a member with a fixed address, for the
// reserved-identity exclusion tests.
func (g *TestDataGenerator) CreateUserWithEmail(ctx context.Context, db bun.IDB, email string) (sharedtypes.UserID, error) {
	id := sharedtypes.UserID(uuid.NewString())
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, email, is_system_account) VALUES (?, ?, FALSE)",
		id.String(), email)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// Subscribe gives a member an active subscription on the given tier.
func (g *TestDataGenerator) Subscribe(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, tier string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO subscriptions (id, user_id, tier, status) VALUES (?, ?, ?, 'active')",
		uuid.NewString(), userID.String(), tier)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// SeasonWindow builds start/end times around now.
func (g *TestDataGenerator) SeasonWindow(startOffset, duration time.Duration) (time.Time, time.Time) {
	start := time.Now().UTC().Add(startOffset).Truncate(time.Second)
	return start, start.Add(duration)
}
