package medalmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding achievement catalog...")

		achievements := []medaldb.Achievement{
			{
				ID:          "primeira-conexao",
				Name:        "Primeira Conexão",
				Description: "Fez sua primeira conexão no clube.",
				Kind:        medaldb.KindMedal,
				Scope:       sharedtypes.AchievementLifetime,
				Points:      50,
				Active:      true,
			},
			{
				ID:          "perfil-completo",
				Name:        "Perfil Completo",
				Description: "Preencheu todas as seções do perfil.",
				Kind:        medaldb.KindMedal,
				Scope:       sharedtypes.AchievementLifetime,
				Points:      100,
				Active:      true,
			},
			{
				ID:          "presenca-confraria",
				Name:        "Presença na Confraria",
				Description: "Participou de uma confraria no mês.",
				Kind:        medaldb.KindFeat,
				Scope:       sharedtypes.AchievementMonthly,
				Points:      150,
				Active:      true,
			},
			{
				ID:          "indicacao-fechada",
				Name:        "Indicação Fechada",
				Description: "Fechou negócio a partir de uma indicação no mês.",
				Kind:        medaldb.KindFeat,
				Scope:       sharedtypes.AchievementMonthly,
				Points:      200,
				Active:      true,
			},
		}
		if _, err := db.NewInsert().
			Model(&achievements).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Achievement catalog seeded successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing seeded achievements...")

		_, err := db.NewDelete().
			Model((*medaldb.Achievement)(nil)).
			Where("id IN (?)", bun.In([]string{
				"primeira-conexao", "perfil-completo", "presenca-confraria", "indicacao-fechada",
			})).
			Exec(ctx)
		return err
	})
}
