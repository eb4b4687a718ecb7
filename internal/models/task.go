package models

import (
	"time"
)

// TaskStatus represents the lifecycle status of a task
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ValidStatus reports whether s is one of the known lifecycle statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// UserRef identifies a user attached to a task (assigner or assignee).
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task represents a unit of assigned work in the system
type Task struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"not null"`
	Description   string       `json:"description"`
	DocumentLinks []string     `json:"documentLinks" gorm:"column:document_links;serializer:json"`
	AssignedByID  string       `json:"-" gorm:"column:assigned_by_id;index"`
	AssignedToID  string       `json:"-" gorm:"column:assigned_to_id;index"`
	AssignedBy    UserRef      `json:"assignedBy" gorm:"-"`
	AssignedTo    UserRef      `json:"assignedTo" gorm:"-"`
	Deadline      time.Time    `json:"deadline" gorm:"not null;index"`
	Priority      TaskPriority `json:"priority" gorm:"default:'normal'"`
	Status        TaskStatus   `json:"status" gorm:"not null;default:'not_started';index"`
	ReportLink    string       `json:"reportLink" gorm:"column:report_link"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
