package placement

import "time"

type Question struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64 `gorm:"index;not null" json:"-"`
	Company    string `gorm:"type:varchar(64);index" json:"company"`
	Year       int    `gorm:"index" json:"year"`
	Difficulty string `gorm:"type:varchar(16);index" json:"difficulty"`
	Topic      string `gorm:"type:varchar(64);index" json:"topic"`
	Title      string `gorm:"type:varchar(255);not null" json:"title"`
	Body       string `gorm:"type:text;not null" json:"body"`
	Bookmarked bool   `gorm:"not null;default:false" json:"bookmarked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string { return "placement_questions" }

type Filters struct {
	Company    string
	Year       int
	Difficulty string
	Topic      string
}
