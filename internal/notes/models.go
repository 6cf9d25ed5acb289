package notes

import "time"

type Note struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint64 `gorm:"index;not null" json:"-"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Subject  string `gorm:"type:varchar(64);index" json:"subject"`
	FileName string `gorm:"type:varchar(255)" json:"file_name"`

	// text extracted from the uploaded file at upload time
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string { return "notes" }
