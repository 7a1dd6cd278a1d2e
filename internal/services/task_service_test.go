package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
)

func intPtr(v int) *int { return &v }

func TestTaskService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)
	f.user(t, "u3", "Meena", constants.RoleWorker)

	t1, err := f.tasks.CreateTask(ctx, "u1", CreateTaskInput{
		Title:       "Fix kitchen tap",
		Description: "Tap leaks all night",
		Category:    "Plumbing",
		Budget:      500,
		Urgency:     "urgent",
		Location:    model.Location{Address: "Sector 5", Lat: 28.5, Lng: 77.1},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusOpen, t1.Status)
	assert.Equal(t, "Asha", t1.OwnerName)
	assert.Equal(t, constants.CategoryPlumbing, t1.Category)
	assert.Equal(t, constants.UrgencyUrgent, t1.Urgency)
	assert.Nil(t, t1.AcceptedWorker)
	assert.Empty(t, t1.Applications)

	a1, err := f.tasks.ApplyForTask(ctx, t1.ID, "u2", "I can do this", nil)
	require.NoError(t, err)
	assert.Equal(t, constants.ApplicationPending, a1.Status)
	assert.Equal(t, 500, a1.ProposedBudget)
	assert.Equal(t, "Ravi", a1.WorkerName)

	accepted, err := f.tasks.AcceptApplication(ctx, t1.ID, a1.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedWorker)
	assert.Equal(t, "u2", *accepted.AcceptedWorker)
	assert.Equal(t, constants.ApplicationAccepted, accepted.Applications[0].Status)

	_, err = f.tasks.ApplyForTask(ctx, t1.ID, "u3", "hi", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	completed, err := f.tasks.CompleteTask(ctx, t1.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, completed.Status)
	assert.Equal(t, []string{t1.ID}, f.pool.enqueued())

	_, err = f.tasks.CompleteTask(ctx, t1.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Len(t, f.pool.enqueued(), 1)
}

func TestTaskService_CreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)

	valid := CreateTaskInput{Title: "Title", Description: "Desc", Category: "cleaning", Budget: 100}

	cases := map[string]func(in *CreateTaskInput){
		"missing title":       func(in *CreateTaskInput) { in.Title = "   " },
		"long title":          func(in *CreateTaskInput) { in.Title = strings.Repeat("a", 201) },
		"missing description": func(in *CreateTaskInput) { in.Description = "" },
		"long description":    func(in *CreateTaskInput) { in.Description = strings.Repeat("d", 1001) },
		"unknown category":    func(in *CreateTaskInput) { in.Category = "astrology" },
		"zero budget":         func(in *CreateTaskInput) { in.Budget = 0 },
		"negative budget":     func(in *CreateTaskInput) { in.Budget = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.tasks.CreateTask(ctx, "u1", in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := f.tasks.CreateTask(ctx, "ghost", valid)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	in := valid
	in.Title = strings.Repeat("a", 200)
	in.Urgency = "whenever"
	task, err := f.tasks.CreateTask(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, constants.UrgencyNormal, task.Urgency)
}

func TestTaskService_ApplyForTaskRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)
	task := f.task(t, "u1", constants.CategoryElectrical)

	_, err := f.tasks.ApplyForTask(ctx, task.ID, "u1", "my own", nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.tasks.ApplyForTask(ctx, "missing", "u2", "", nil)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, err = f.tasks.ApplyForTask(ctx, task.ID, "ghost", "", nil)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.tasks.ApplyForTask(ctx, task.ID, "u2", "", intPtr(0))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.tasks.ApplyForTask(ctx, task.ID, "u2", strings.Repeat("m", 501), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	app, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "  tomorrow morning  ", intPtr(450))
	require.NoError(t, err)
	assert.Equal(t, 450, app.ProposedBudget)
	assert.Equal(t, "tomorrow morning", app.Message)

	_, err = f.tasks.ApplyForTask(ctx, task.ID, "u2", "again", nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Applications, 1)
}

func TestTaskService_ApplicationSnapshotsDoNotFollowProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)
	task := f.task(t, "u1", constants.CategoryCooking)

	_, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "", nil)
	require.NoError(t, err)

	renamed := "Ravi Kumar"
	_, err = f.users.UpdateProfile(ctx, "u2", &renamed, nil)
	require.NoError(t, err)

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", stored.Applications[0].WorkerName)
}

func TestTaskService_AcceptApplicationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)
	f.user(t, "u3", "Meena", constants.RoleWorker)
	f.user(t, "u4", "Kiran", constants.RoleWorker)
	task := f.task(t, "u1", constants.CategoryPainting)

	a2, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "", nil)
	require.NoError(t, err)
	a3, err := f.tasks.ApplyForTask(ctx, task.ID, "u3", "", nil)
	require.NoError(t, err)
	a4, err := f.tasks.ApplyForTask(ctx, task.ID, "u4", "", nil)
	require.NoError(t, err)

	_, err = f.tasks.AcceptApplication(ctx, "missing", a2.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, err = f.tasks.AcceptApplication(ctx, task.ID, a2.ID, "u2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.tasks.AcceptApplication(ctx, task.ID, "nope", "u1")
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	accepted, err := f.tasks.AcceptApplication(ctx, task.ID, a3.ID, "u1")
	require.NoError(t, err)
	statuses := map[string]constants.ApplicationStatus{}
	for _, app := range accepted.Applications {
		statuses[app.ID] = app.Status
	}
	assert.Equal(t, map[string]constants.ApplicationStatus{
		a2.ID: constants.ApplicationRejected,
		a3.ID: constants.ApplicationAccepted,
		a4.ID: constants.ApplicationRejected,
	}, statuses)
	assert.Equal(t, []string{a2.ID, a3.ID, a4.ID}, []string{
		accepted.Applications[0].ID, accepted.Applications[1].ID, accepted.Applications[2].ID,
	})

	_, err = f.tasks.AcceptApplication(ctx, task.ID, a3.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = f.tasks.AcceptApplication(ctx, task.ID, a4.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestTaskService_ConcurrentAcceptsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner", "Asha", constants.RoleSeeker)
	task := f.task(t, "owner", constants.CategoryShifting)

	const applicants = 8
	appIDs := make([]string, 0, applicants)
	for i := 0; i < applicants; i++ {
		id := "w" + string(rune('a'+i))
		f.user(t, id, "Worker "+id, constants.RoleWorker)
		app, err := f.tasks.ApplyForTask(ctx, task.ID, id, "", nil)
		require.NoError(t, err)
		appIDs = append(appIDs, app.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, applicants)
	for _, appID := range appIDs {
		wg.Add(1)
		go func(appID string) {
			defer wg.Done()
			_, err := f.tasks.AcceptApplication(ctx, task.ID, appID, "owner")
			errs <- err
		}(appID)
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	}
	assert.Equal(t, 1, successes)

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	acceptedCount := 0
	for _, app := range stored.Applications {
		if app.Status == constants.ApplicationAccepted {
			acceptedCount++
			assert.Equal(t, app.WorkerID, *stored.AcceptedWorker)
		}
	}
	assert.Equal(t, 1, acceptedCount)
}

func TestTaskService_CompleteTaskRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)
	task := f.task(t, "u1", constants.CategoryDelivery)

	_, err := f.tasks.CompleteTask(ctx, task.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	app, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "", nil)
	require.NoError(t, err)
	_, err = f.tasks.AcceptApplication(ctx, task.ID, app.ID, "u1")
	require.NoError(t, err)

	_, err = f.tasks.CompleteTask(ctx, task.ID, "u2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.tasks.CompleteTask(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, err = f.tasks.CompleteTask(ctx, "", "u1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Empty(t, f.pool.enqueued())
}

func TestTaskService_ListOpenTasksByCategoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)

	p1 := f.task(t, "u1", constants.CategoryPlumbing)
	e1 := f.task(t, "u1", constants.CategoryElectrical)
	p2 := f.task(t, "u1", constants.CategoryPlumbing)
	e2 := f.task(t, "u1", constants.CategoryElectrical)
	p3 := f.task(t, "u1", constants.CategoryPlumbing)

	tasks, err := f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Category: "plumbing"})
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, taskIDs(tasks))

	all, err := f.tasks.ListOpenTasks(ctx, OpenTaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID, e2.ID, p2.ID, e1.ID, p1.ID}, taskIDs(all))

	_, err = f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Category: "astrology"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Urgency: "soonish"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTaskService_ListOpenTasksFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)

	leak, err := f.tasks.CreateTask(ctx, "u1", CreateTaskInput{
		Title: "Bathroom leak", Description: "Water under the sink", Category: "plumbing", Budget: 300, Urgency: "EMERGENCY",
	})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, "u1", CreateTaskInput{
		Title: "Install geyser", Description: "New GEYSER in bathroom", Category: "plumbing", Budget: 900,
	})
	require.NoError(t, err)
	taken := f.task(t, "u1", constants.CategoryPlumbing)
	app, err := f.tasks.ApplyForTask(ctx, taken.ID, "u2", "", nil)
	require.NoError(t, err)
	_, err = f.tasks.AcceptApplication(ctx, taken.ID, app.ID, "u1")
	require.NoError(t, err)

	tasks, err := f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Urgency: "emergency"})
	require.NoError(t, err)
	assert.Equal(t, []string{leak.ID}, taskIDs(tasks))

	tasks, err = f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Search: "BATHROOM"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Category: "plumbing", Search: "sink", Urgency: "Emergency"})
	require.NoError(t, err)
	assert.Equal(t, []string{leak.ID}, taskIDs(tasks))

	tasks, err = f.tasks.ListOpenTasks(ctx, OpenTaskFilter{Category: "plumbing"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "accepted tasks are not open")

	all, err := f.tasks.ListTasks(ctx, "", OpenTaskFilter{Category: "plumbing"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acceptedOnly, err := f.tasks.ListTasks(ctx, "accepted", OpenTaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{taken.ID}, taskIDs(acceptedOnly))

	_, err = f.tasks.ListTasks(ctx, "archived", OpenTaskFilter{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTaskService_ListByOwnerAndApplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u5", "Neha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)

	first := f.task(t, "u1", constants.CategoryTech)
	other := f.task(t, "u5", constants.CategoryTech)
	second := f.task(t, "u1", constants.CategoryTeaching)

	app, err := f.tasks.ApplyForTask(ctx, first.ID, "u2", "", nil)
	require.NoError(t, err)
	_, err = f.tasks.AcceptApplication(ctx, first.ID, app.ID, "u1")
	require.NoError(t, err)
	_, err = f.tasks.ApplyForTask(ctx, other.ID, "u2", "", nil)
	require.NoError(t, err)

	owned, err := f.tasks.ListTasksByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, taskIDs(owned))

	applied, err := f.tasks.ListAppliedTasks(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID, first.ID}, taskIDs(applied))

	none, err := f.tasks.ListAppliedTasks(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.tasks.ListTasksByOwner(ctx, " ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTaskService_AcceptedWorkerInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)

	f.task(t, "u1", constants.CategoryGardening)
	accepted := f.task(t, "u1", constants.CategoryGardening)
	done := f.task(t, "u1", constants.CategoryGardening)
	for _, task := range []*model.Task{accepted, done} {
		app, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "", nil)
		require.NoError(t, err)
		_, err = f.tasks.AcceptApplication(ctx, task.ID, app.ID, "u1")
		require.NoError(t, err)
	}
	_, err := f.tasks.CompleteTask(ctx, done.ID, "u1")
	require.NoError(t, err)

	all, err := f.tasks.ListTasks(ctx, "", OpenTaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, task := range all {
		assert.Equal(t, task.Status.HasAcceptedWorker(), task.AcceptedWorker != nil, "task %s in %s", task.ID, task.Status)
	}
}

func TestTaskService_RateWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Asha", constants.RoleSeeker)
	f.user(t, "u2", "Ravi", constants.RoleWorker)

	finish := func() *model.Task {
		task := f.task(t, "u1", constants.CategoryCleaning)
		app, err := f.tasks.ApplyForTask(ctx, task.ID, "u2", "", nil)
		require.NoError(t, err)
		_, err = f.tasks.AcceptApplication(ctx, task.ID, app.ID, "u1")
		require.NoError(t, err)
		return task
	}

	first := finish()
	_, err := f.tasks.RateWorker(ctx, first.ID, "u1", 5, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "accepted but not completed")

	_, err = f.tasks.CompleteTask(ctx, first.ID, "u1")
	require.NoError(t, err)

	_, err = f.tasks.RateWorker(ctx, first.ID, "u2", 5, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.tasks.RateWorker(ctx, first.ID, "u1", 6, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.tasks.RateWorker(ctx, first.ID, "u1", 4, strings.Repeat("r", 501))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	rating, err := f.tasks.RateWorker(ctx, first.ID, "u1", 5, "Spotless")
	require.NoError(t, err)
	assert.Equal(t, "u2", rating.GivenTo)

	_, err = f.tasks.RateWorker(ctx, first.ID, "u1", 3, "")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	second := finish()
	_, err = f.tasks.CompleteTask(ctx, second.ID, "u1")
	require.NoError(t, err)
	_, err = f.tasks.RateWorker(ctx, second.ID, "u1", 4, "")
	require.NoError(t, err)

	worker, err := f.users.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 4.5, worker.Rating)

	_, err = f.tasks.RateWorker(ctx, "missing", "u1", 4, "")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}
