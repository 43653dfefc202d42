package notificationdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Repository is the persistence port for the notification and system-chat
// projections.
type Repository interface {
	InsertNotification(ctx context.Context, db bun.IDB, n *Notification) error
	ListNotificationsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]Notification, error)
	LocateOrCreateConversation(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (int64, error)
	InsertChatMessage(ctx context.Context, db bun.IDB, m *ChatMessage) error
}

type Impl struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Impl {
	return &Impl{db: db}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.db
}

func (r *Impl) InsertNotification(ctx context.Context, db bun.IDB, n *Notification) error {
	if _, err := r.idb(db).NewInsert().Model(n).Exec(ctx); err != nil {
		return fmt.Errorf("notificationdb.InsertNotification: %w", err)
	}
	return nil
}

func (r *Impl) ListNotificationsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []Notification
	err := r.idb(db).NewSelect().
		Model(&notifications).
		Where("n.user_id = ?", userID).
		Order("n.created_at DESC", "n.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("notificationdb.ListNotificationsForUser: %w", err)
	}
	return notifications, nil
}

// LocateOrCreateConversation upserts the member's system conversation and
// returns its id. The unique index on user_id makes the upsert race-free.
func (r *Impl) LocateOrCreateConversation(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (int64, error) {
	conv := &Conversation{UserID: userID}
	err := r.idb(db).NewInsert().
		Model(conv).
		On("CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id").
		Returning("id").
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("notificationdb.LocateOrCreateConversation: %w", err)
	}
	return conv.ID, nil
}

func (r *Impl) InsertChatMessage(ctx context.Context, db bun.IDB, m *ChatMessage) error {
	if _, err := r.idb(db).NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("notificationdb.InsertChatMessage: %w", err)
	}
	return nil
}
