package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/lavanya0506/task-tracker/internal/cache"
	"github.com/lavanya0506/task-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL  = 30 * time.Minute
	listCacheTTL  = 5 * time.Minute
	statsCacheTTL = 5 * time.Minute
)

// CachedTaskService is a read-through cache in front of a TaskService. Cache
// errors are swallowed; the store remains the source of truth.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	created, err := s.taskService.CreateTask(db, task)
	if err != nil {
		return created, err
	}

	s.cache.Set(taskKey(created.UserID, created.ID), created, taskCacheTTL)
	s.invalidateUser(created.UserID)
	return created, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error) {
	key := taskKey(userID, id)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	task, err := s.taskService.GetTaskByID(db, userID, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(key, task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, q TaskListQuery) ([]models.Task, Pagination, error) {
	key := listKey(userID, q)

	var cached struct {
		Tasks      []models.Task `json:"tasks"`
		Pagination Pagination    `json:"pagination"`
	}
	if err := s.cache.Get(key, &cached); err == nil {
		return cached.Tasks, cached.Pagination, nil
	}

	tasks, pagination, err := s.taskService.ListTasks(db, userID, q)
	if err != nil {
		return tasks, pagination, err
	}

	cached.Tasks = tasks
	cached.Pagination = pagination
	s.cache.Set(key, cached, listCacheTTL)

	return tasks, pagination, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, userID, id, patch)
	if err != nil {
		return task, err
	}

	s.cache.Delete(taskKey(userID, id))
	s.invalidateUser(userID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, userID, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, userID, id); err != nil {
		return err
	}

	s.cache.Delete(taskKey(userID, id))
	s.invalidateUser(userID)
	return nil
}

func (s *CachedTaskService) GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	key := statsKey(userID)

	var cached TaskStats
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	stats, err := s.taskService.GetTaskStats(db, userID)
	if err != nil {
		return stats, err
	}

	s.cache.Set(key, stats, statsCacheTTL)
	return stats, nil
}

func (s *CachedTaskService) invalidateUser(userID uuid.UUID) {
	s.cache.DeletePattern(fmt.Sprintf("tasks:%s:*", userID))
	s.cache.Delete(statsKey(userID))
}

func taskKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", userID, id)
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("stats:%s", userID)
}

func listKey(userID uuid.UUID, q TaskListQuery) string {
	from, to := "-", "-"
	if q.DueDateFrom != nil {
		from = q.DueDateFrom.UTC().Format(time.RFC3339)
	}
	if q.DueDateTo != nil {
		to = q.DueDateTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("tasks:%s:st=%s:pr=%s:q=%s:from=%s:to=%s:tags=%s:sort=%s,%s:page=%d:limit=%d",
		userID, q.Status, q.Priority, q.Search, from, to,
		strings.Join(q.Tags, ","), q.SortBy, q.SortOrder, q.Page, q.Limit)
}
