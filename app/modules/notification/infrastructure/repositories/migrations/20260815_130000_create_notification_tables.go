package notificationmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	notificationdb "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating notification tables...")

		if _, err := db.NewCreateTable().Model((*notificationdb.Notification)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*notificationdb.Conversation)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*notificationdb.ChatMessage)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)",
		).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages (conversation_id, created_at ASC)",
		).Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Notification tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping notification tables...")

		if _, err := db.NewDropTable().Model((*notificationdb.ChatMessage)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*notificationdb.Conversation)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*notificationdb.Notification)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Notification tables dropped successfully!")
		return nil
	})
}
