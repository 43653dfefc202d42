package progressionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding default rank ladder...")

		ranks := []progressiondb.Rank{
			{ID: "novato", Name: "Novato", PointsRequired: 0, Level: 1},
			{ID: "conectado", Name: "Conectado", PointsRequired: 250, Level: 2},
			{ID: "influente", Name: "Influente", PointsRequired: 500, Level: 3},
			{ID: "lider", Name: "Líder", PointsRequired: 1000, Level: 4},
			{ID: "lendario", Name: "Lendário", PointsRequired: 2500, Level: 5},
		}
		if _, err := db.NewInsert().
			Model(&ranks).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rank ladder seeded successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing seeded rank ladder...")

		_, err := db.NewDelete().
			Model((*progressiondb.Rank)(nil)).
			Where("id IN (?)", bun.In([]string{"novato", "conectado", "influente", "lider", "lendario"})).
			Exec(ctx)
		return err
	})
}
