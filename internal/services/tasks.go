package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/lavanya0506/task-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskListQuery is the untrusted filter/sort/page input for ListTasks. The
// caller's identity is never part of it; owner scoping comes from the verified
// session and is applied before any of these filters.
type TaskListQuery struct {
	Status      string
	Priority    string
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Tags        []string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	Tags        *models.TagList
}

type TaskStats struct {
	Total        int64 `json:"total"`
	Todo         int64 `json:"todo" gorm:"column:todo"`
	InProgress   int64 `json:"inProgress" gorm:"column:in_progress"`
	Done         int64 `json:"done"`
	HighPriority int64 `json:"highPriority" gorm:"column:high_priority"`
	Overdue      int64 `json:"overdue"`
}

// TaskService performs all task reads and writes scoped to an owning user.
// A record that exists but belongs to someone else behaves exactly like a
// missing one: gorm.ErrRecordNotFound.
type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task) (models.Task, error)
	GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, q TaskListQuery) ([]models.Task, Pagination, error)
	UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch TaskPatch) (models.Task, error)
	DeleteTask(db *gorm.DB, userID, id uuid.UUID) error
	GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

const (
	defaultPageLimit = 10
	sentinelAll      = "All"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"title":     "title",
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	if task.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return models.Task{}, fmt.Errorf("failed to generate task ID: %w", err)
		}
		task.ID = id
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	return task, err
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, q TaskListQuery) ([]models.Task, Pagination, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	var total int64
	if err := s.listQuery(db, userID, q).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	tasks := make([]models.Task, 0, limit)
	err := s.listQuery(db, userID, q).
		Order(orderClause(q.SortBy, q.SortOrder)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	pagination := Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	return tasks, pagination, nil
}

// listQuery builds the filtered query. Owner scoping comes first and is
// unconditional.
func (s *TaskServiceImpl) listQuery(db *gorm.DB, userID uuid.UUID, q TaskListQuery) *gorm.DB {
	tx := db.Model(&models.Task{}).Where("user_id = ?", userID)

	if q.Status != "" && q.Status != sentinelAll {
		tx = tx.Where("status = ?", q.Status)
	}

	if q.Priority != "" && q.Priority != sentinelAll {
		tx = tx.Where("priority = ?", q.Priority)
	}

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	if q.DueDateFrom != nil {
		tx = tx.Where("due_date >= ?", *q.DueDateFrom)
	}
	if q.DueDateTo != nil {
		tx = tx.Where("due_date <= ?", *q.DueDateTo)
	}

	if len(q.Tags) > 0 {
		conds := make([]string, 0, len(q.Tags))
		args := make([]interface{}, 0, len(q.Tags))
		for _, tag := range q.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			conds = append(conds, "tags LIKE ?")
			args = append(args, `%"`+tag+`"%`)
		}
		if len(conds) > 0 {
			tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}

	return tx
}

// orderClause whitelists the sort key and appends a fixed tiebreak so that
// repeated queries over an unchanged data set paginate identically.
func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	clause := column + " " + direction
	if column != "created_at" {
		clause += ", created_at DESC"
	}
	return clause + ", id ASC"
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.GetTaskByID(db, userID, id)
	if err != nil {
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Tags != nil {
		updates["tags"] = *patch.Tags
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := db.Model(&task).Updates(updates).Error; err != nil {
		return models.Task{}, err
	}

	return s.GetTaskByID(db, userID, id)
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *TaskServiceImpl) GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	var stats TaskStats
	err := db.Model(&models.Task{}).
		Where("user_id = ?", userID).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'To Do' THEN 1 ELSE 0 END), 0) AS todo,
			COALESCE(SUM(CASE WHEN status = 'In Progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN status = 'Done' THEN 1 ELSE 0 END), 0) AS done,
			COALESCE(SUM(CASE WHEN priority = 'High' THEN 1 ELSE 0 END), 0) AS high_priority,
			COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status <> 'Done' THEN 1 ELSE 0 END), 0) AS overdue`,
			time.Now()).
		Scan(&stats).Error
	return stats, err
}
