package services_test

import (
	"testing"

	"github.com/lavanya0506/task-tracker/internal/cache"
	"github.com/lavanya0506/task-tracker/internal/models"
	"github.com/lavanya0506/task-tracker/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCachedFixture(t *testing.T) (*gorm.DB, *services.CachedTaskService, uuid.UUID) {
	t.Helper()

	db := newTestDB(t)
	mr := miniredis.RunT(t)

	cfg := cache.DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { redisCache.Close() })

	userID := uuid.Must(uuid.NewV4())
	user := models.User{ID: userID, Email: "cached@example.com", Password: "hash", Name: "user"}
	require.NoError(t, db.Create(&user).Error)

	return db, services.NewCachedTaskService(services.NewTaskService(), redisCache), userID
}

func TestCachedTaskService_GetTaskByID_ServesFromCache(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	created, err := service.CreateTask(db, models.Task{UserID: userID, Title: "cache me"})
	require.NoError(t, err)

	// Warm the cache, then change the row behind the service's back. A cached
	// read keeps returning the stale copy until invalidation.
	fetched, err := service.GetTaskByID(db, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cache me", fetched.Title)

	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", created.ID).
		Update("title", "changed directly").Error)

	stale, err := service.GetTaskByID(db, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cache me", stale.Title)
}

func TestCachedTaskService_UpdateInvalidatesTask(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	created, err := service.CreateTask(db, models.Task{UserID: userID, Title: "original"})
	require.NoError(t, err)

	_, err = service.GetTaskByID(db, userID, created.ID)
	require.NoError(t, err)

	title := "renamed"
	_, err = service.UpdateTask(db, userID, created.ID, services.TaskPatch{Title: &title})
	require.NoError(t, err)

	fetched, err := service.GetTaskByID(db, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", fetched.Title)
}

func TestCachedTaskService_ListInvalidatedOnCreate(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	_, err := service.CreateTask(db, models.Task{UserID: userID, Title: "first"})
	require.NoError(t, err)

	tasks, pagination, err := service.ListTasks(db, userID, services.TaskListQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), pagination.Total)

	_, err = service.CreateTask(db, models.Task{UserID: userID, Title: "second"})
	require.NoError(t, err)

	tasks, pagination, err = service.ListTasks(db, userID, services.TaskListQuery{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, int64(2), pagination.Total)
}

func TestCachedTaskService_StatsInvalidatedOnDelete(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	created, err := service.CreateTask(db, models.Task{UserID: userID, Title: "count me"})
	require.NoError(t, err)

	stats, err := service.GetTaskStats(db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	require.NoError(t, service.DeleteTask(db, userID, created.ID))

	stats, err = service.GetTaskStats(db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
}

func TestCachedTaskService_DeleteRemovesTaskEverywhere(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	created, err := service.CreateTask(db, models.Task{UserID: userID, Title: "short lived"})
	require.NoError(t, err)

	_, err = service.GetTaskByID(db, userID, created.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(db, userID, created.ID))

	_, err = service.GetTaskByID(db, userID, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCachedTaskService_ListKeyVariesWithQuery(t *testing.T) {
	db, service, userID := newCachedFixture(t)

	_, err := service.CreateTask(db, models.Task{UserID: userID, Title: "done task", Status: models.StatusDone})
	require.NoError(t, err)
	_, err = service.CreateTask(db, models.Task{UserID: userID, Title: "open task"})
	require.NoError(t, err)

	all, _, err := service.ListTasks(db, userID, services.TaskListQuery{})
	require.NoError(t, err)

	done, _, err := service.ListTasks(db, userID, services.TaskListQuery{Status: "Done"})
	require.NoError(t, err)

	assert.Len(t, all, 2)
	require.Len(t, done, 1)
	assert.Equal(t, "done task", done[0].Title)
}
