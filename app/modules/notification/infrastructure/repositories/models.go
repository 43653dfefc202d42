package notificationdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Notification kinds mirror the event topics that produce them.
const (
	KindMedalGranted   = "medal_granted"
	KindRankChanged    = "rank_changed"
	KindSeasonFinished = "season_finished"
)

// Notification is one in-app notification row. The engine only writes
// these; delivery and read tracking belong to the client apps.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64              `bun:"id,pk,autoincrement"`
	UserID    sharedtypes.UserID `bun:"user_id,notnull"`
	Kind      string             `bun:"kind,notnull"`
	Title     string             `bun:"title,notnull"`
	Body      string             `bun:"body"`
	ReadAt    *time.Time         `bun:"read_at"`
	CreatedAt time.Time          `bun:"created_at,notnull,default:current_timestamp"`
}

// Conversation is a chat thread between the system identity and one
// member. Unique on user_id so lookups can upsert.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID        int64              `bun:"id,pk,autoincrement"`
	UserID    sharedtypes.UserID `bun:"user_id,notnull,unique"`
	CreatedAt time.Time          `bun:"created_at,notnull,default:current_timestamp"`
}

// ChatMessage is one system-authored message in a conversation.
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID int64     `bun:"conversation_id,notnull"`
	Body           string    `bun:"body,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
