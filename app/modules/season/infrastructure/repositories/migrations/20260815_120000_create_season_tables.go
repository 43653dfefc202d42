package seasonmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating season tables...")

		if _, err := db.NewCreateTable().Model((*seasondb.Season)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*seasondb.SeasonWinner)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// At most one active season, enforced by the database rather than
		// application checks.
		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_seasons_single_active ON seasons (status) WHERE status = 'active'",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_season_winners_position ON season_winners (season_id, position)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_season_winners_user ON season_winners (season_id, user_id)",
		).Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Season tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping season tables...")

		if _, err := db.NewDropTable().Model((*seasondb.SeasonWinner)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*seasondb.Season)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Season tables dropped successfully!")
		return nil
	})
}
