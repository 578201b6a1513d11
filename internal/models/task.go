package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOnHold     TaskStatus = "on_hold"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type TaskCategory string

const (
	CategorySEO         TaskCategory = "seo"
	CategoryContent     TaskCategory = "content"
	CategoryTechnical   TaskCategory = "technical"
	CategoryDesign      TaskCategory = "design"
	CategoryDevelopment TaskCategory = "development"
	CategoryReporting   TaskCategory = "reporting"
	CategoryOther       TaskCategory = "other"
)

// Task is one work item on a client's board.
type Task struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      ClientProfile `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      TaskStatus    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Priority    TaskPriority  `gorm:"size:10;not null;default:'medium'" json:"priority"`
	Category    TaskCategory  `gorm:"size:20;not null;default:'other'" json:"category"`

	DueDate       *Date `gorm:"type:date" json:"due_date"`
	CompletedDate *Date `gorm:"type:date" json:"completed_date"`
	Order         int   `gorm:"column:display_order;not null;default:0" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the task slipped: not completed, has a due date,
// and that date is strictly before today.
func (t *Task) IsOverdue(today Date) bool {
	return t.Status != TaskCompleted && t.DueDate != nil && t.DueDate.Before(today)
}
