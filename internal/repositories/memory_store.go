package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
	model "task-marketplace.com/task-marketplace/internal/models"
)

// MemoryStore keeps everything in process memory. It backs the mock mode and tests.
// Values are copied in and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]*model.Task
	order   map[string]int64
	seq     int64
	users   map[string]*model.User
	phones  map[string]string
	ratings []model.Rating
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[string]*model.Task),
		order:  make(map[string]int64),
		users:  make(map[string]*model.User),
		phones: make(map[string]string),
	}
}

func (m *MemoryStore) CreateTask(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; ok {
		return ErrDuplicate
	}
	if task.Version == 0 {
		task.Version = 1
	}
	if task.Applications == nil {
		task.Applications = []model.Application{}
	}

	m.seq++
	m.order[task.ID] = m.seq
	m.tasks[task.ID] = task.Clone()
	return nil
}

func (m *MemoryStore) FindTaskByID(_ context.Context, id string) (*model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return task.Clone(), nil
}

func (m *MemoryStore) ListTasks(_ context.Context, filter TaskFilter) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if filter.Matches(task) {
			out = append(out, *task.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.order[out[i].ID] > m.order[out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, id string, mutate func(*model.Task) error) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(working.Applications))
	for i := range working.Applications {
		app := &working.Applications[i]
		app.TaskID = working.ID
		if _, dup := seen[app.WorkerID]; dup {
			return nil, ErrDuplicate
		}
		seen[app.WorkerID] = struct{}{}
	}

	working.Version = current.Version + 1
	working.UpdatedAt = time.Now().UTC()
	m.tasks[id] = working
	return working.Clone(), nil
}

func (m *MemoryStore) ListUncreditedCompletions(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []*model.Task
	for _, task := range m.tasks {
		if task.Status == constants.StatusCompleted && !task.WorkerCredited && task.AcceptedWorker != nil {
			pending = append(pending, task)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})

	ids := make([]string, 0, limit)
	for _, task := range pending {
		if len(ids) == limit {
			break
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}

func (m *MemoryStore) CreditWorker(_ context.Context, taskID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return false, ErrNotFound
	}
	if task.Status != constants.StatusCompleted || task.WorkerCredited || task.AcceptedWorker == nil {
		return false, nil
	}

	task.WorkerCredited = true
	if worker, ok := m.users[*task.AcceptedWorker]; ok {
		worker.TasksCompleted++
	}
	return true, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.phones[user.Phone]; ok {
		return ErrDuplicate
	}
	if _, ok := m.users[user.ID]; ok {
		return ErrDuplicate
	}

	m.users[user.ID] = user.Clone()
	m.phones[user.Phone] = user.ID
	return nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (m *MemoryStore) FindUserByPhone(_ context.Context, phone string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.phones[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return m.users[id].Clone(), nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, id string, mutate func(*model.User) error) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.Phone = current.Phone
	working.UpdatedAt = time.Now().UTC()

	m.users[id] = working
	return working.Clone(), nil
}

func (m *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func (m *MemoryStore) CreateRating(_ context.Context, rating *model.Rating) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	receiver, ok := m.users[rating.GivenTo]
	if !ok {
		return nil, ErrNotFound
	}

	total, count := 0, 0
	for _, r := range m.ratings {
		if r.TaskID == rating.TaskID && r.GivenBy == rating.GivenBy {
			return nil, ErrDuplicate
		}
		if r.GivenTo == rating.GivenTo {
			total += r.Stars
			count++
		}
	}

	m.ratings = append(m.ratings, *rating)
	total += rating.Stars
	count++

	receiver.Rating = roundRating(float64(total) / float64(count))
	return receiver.Clone(), nil
}

func (m *MemoryStore) FindRating(_ context.Context, taskID, givenBy string) (*model.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.ratings {
		if r.TaskID == taskID && r.GivenBy == givenBy {
			rating := r
			return &rating, nil
		}
	}
	return nil, ErrNotFound
}
