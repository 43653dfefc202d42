package medalmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating achievement tables...")

		if _, err := db.NewCreateTable().Model((*medaldb.Achievement)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*medaldb.UserAchievement)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// The grant idempotency contract. Lifetime achievements use the
		// empty period, monthly ones "YYYY-MM"; either way a retry hits
		// this index and becomes a no-op.
		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_user_achievements_grant ON user_achievements (user_id, achievement_id, period)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements (user_id, granted_at DESC)",
		).Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Achievement tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping achievement tables...")

		if _, err := db.NewDropTable().Model((*medaldb.UserAchievement)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*medaldb.Achievement)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Achievement tables dropped successfully!")
		return nil
	})
}
