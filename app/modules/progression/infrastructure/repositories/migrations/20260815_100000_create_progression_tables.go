package progressionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating progression tables...")

		// users and subscriptions are owned by the platform; create them
		// only for standalone deployments and integration environments.
		if _, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS users (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				email text NOT NULL UNIQUE,
				is_system_account boolean NOT NULL DEFAULT false,
				created_at timestamptz NOT NULL DEFAULT now()
			)`).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS subscriptions (
				id text PRIMARY KEY,
				user_id uuid NOT NULL REFERENCES users (id),
				tier text NOT NULL,
				status text NOT NULL,
				created_at timestamptz NOT NULL DEFAULT now()
			)`).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_subscriptions_user_status ON subscriptions (user_id, status, created_at DESC)",
		).Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateTable().Model((*progressiondb.Rank)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*progressiondb.UserScoreState)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*progressiondb.PointHistory)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_ranks_level ON ranks (level)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_ranks_points_required ON ranks (points_required)",
		).Exec(ctx); err != nil {
			return err
		}
		// Leaderboard reads sort on the counters.
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_score_states_lifetime ON user_score_states (lifetime_points DESC, user_id ASC)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_score_states_season ON user_score_states (season_points DESC, user_id ASC)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_point_history_user_created ON point_history (user_id, created_at DESC)",
		).Exec(ctx); err != nil {
			return err
		}
		// Counters never go negative; the floor in adjustments relies on it.
		if _, err := db.NewRaw(`
			ALTER TABLE user_score_states
			ADD CONSTRAINT chk_score_states_non_negative
			CHECK (lifetime_points >= 0 AND season_points >= 0)`).Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Progression tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping progression tables...")

		if _, err := db.NewDropTable().Model((*progressiondb.PointHistory)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*progressiondb.UserScoreState)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*progressiondb.Rank)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Progression tables dropped successfully!")
		return nil
	})
}
