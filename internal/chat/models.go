package chat

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Title     string    `gorm:"type:varchar(120);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// loaded separately, not a gorm association
	Messages []Message `gorm:"-" json:"messages"`
}

func (Session) TableName() string { return "chat_sessions" }

// Source is a point-in-time citation snapshot. It deliberately carries no
// reference to the originating row, so deleting a note/repo/question never
// corrupts an already-persisted citation.
type Source struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Sources is stored as a JSON text column.
type Sources []Source

func (s Sources) Value() (driver.Value, error) {
	if s == nil {
		s = Sources{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Sources) Scan(value any) error {
	if value == nil {
		*s = Sources{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("chat: unsupported sources column type")
	}
	if len(raw) == 0 {
		*s = Sources{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(26);not null;index:idx_chat_msg_user_session_id,priority:2" json:"session_id"`
	UserID    uint64    `gorm:"not null;index:idx_chat_msg_user_session_id,priority:1" json:"-"`
	Role      string    `gorm:"type:varchar(16);index;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   Sources   `gorm:"type:text" json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }
