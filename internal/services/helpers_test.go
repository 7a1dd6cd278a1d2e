package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/auth"
	"task-marketplace.com/task-marketplace/internal/constants"
	"task-marketplace.com/task-marketplace/internal/lock"
	"task-marketplace.com/task-marketplace/internal/logger"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// recordingEnqueuer stands in for the pool and remembers what was handed over.
type recordingEnqueuer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingEnqueuer) Enqueue(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, taskID)
	return true
}

func (r *recordingEnqueuer) enqueued() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// stepClock advances one minute on every reading so creation order is unambiguous.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	store *repository.MemoryStore
	tasks *TaskService
	users *UserService
	pool  *recordingEnqueuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	pool := &recordingEnqueuer{}
	clock := &stepClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}

	tasks := NewTaskService(store, lock.NewLocalLocker(5*time.Second), pool, logger.Discard())
	tasks.now = clock.Now

	users := NewUserService(store, auth.NewTokenIssuer(testSecret, time.Hour), logger.Discard())
	users.now = clock.Now

	return &fixture{store: store, tasks: tasks, users: users, pool: pool}
}

func (f *fixture) user(t *testing.T, id, name string, role constants.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:           id,
		Name:         name,
		Phone:        "98" + padID(id),
		PasswordHash: "x",
		Role:         role,
		Skills:       []string{},
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func padID(id string) string {
	out := id
	for len(out) < 8 {
		out = "0" + out
	}
	return out[len(out)-8:]
}

func (f *fixture) task(t *testing.T, ownerID string, category constants.Category) *model.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), ownerID, CreateTaskInput{
		Title:       "Need help with " + string(category),
		Description: "Details for a " + string(category) + " job",
		Category:    string(category),
		Budget:      500,
	})
	require.NoError(t, err)
	return task
}
