package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// TagList stores a task's tag set as a JSON array in a single text column so
// the same schema works on postgres and sqlite. Tag filters match on the
// quote-delimited form (`"tag"`), which keeps substring matching exact.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
}

// Task is an owned work item. UserID is set at creation and never changes;
// every query against tasks is scoped by it.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID    `json:"userId" gorm:"type:uuid;not null;index:idx_tasks_user_created,priority:1;index:idx_tasks_user_status,priority:1"`
	Title       string       `json:"title" gorm:"not null;size:100"`
	Description string       `json:"description" gorm:"size:500"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Priority    TaskPriority `json:"priority" gorm:"not null;default:'Medium'"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'To Do';index:idx_tasks_user_status,priority:2"`
	Tags        TagList      `json:"tags,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func ValidPriority(p string) bool {
	switch TaskPriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}
