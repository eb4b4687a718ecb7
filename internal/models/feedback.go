package models

import (
	"time"
)

// Feedback is a single entry in a task's discussion thread.
// Entries are append-only; they are never edited and only removed when
// the owning task is deleted. Seq is the write sequence: it is what
// defines insertion order, since timestamps can collide within a tick.
type Feedback struct {
	Seq        uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	ID         string    `json:"id" gorm:"uniqueIndex;not null"`
	TaskID     string    `json:"taskId" gorm:"column:task_id;index;not null"`
	AuthorID   string    `json:"authorId" gorm:"column:author_id"`
	AuthorName string    `json:"authorName" gorm:"column:author_name"`
	Message    string    `json:"message" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for Feedback Model
func (Feedback) TableName() string {
	return "feedback"
}
