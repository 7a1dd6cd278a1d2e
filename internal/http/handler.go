package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"task-marketplace.com/task-marketplace/internal/constants"
	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	middleware "task-marketplace.com/task-marketplace/internal/http/middlewares"
	"task-marketplace.com/task-marketplace/internal/http/validators"
	model "task-marketplace.com/task-marketplace/internal/models"
	"task-marketplace.com/task-marketplace/internal/services"
)

type Handler struct {
	taskService *services.TaskService
	userService *services.UserService
}

func NewHandler(taskService *services.TaskService, userService *services.UserService) *Handler {
	return &Handler{
		taskService: taskService,
		userService: userService,
	}
}

// bindJSON decodes the request body only, so path and query values never leak into it.
func bindJSON(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	return validators.ValidateRequest(req)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), middleware.UserID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
		Urgency:     req.Urgency,
		Location: model.Location{
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// ListTasks lists open tasks unless a status is given; status=all drops the status filter.
func (h *Handler) ListTasks(c echo.Context) error {
	var q dto.TaskListQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return apperrors.Validation("invalid query parameters")
	}

	filter := services.OpenTaskFilter{
		Category: q.Category,
		Urgency:  q.Urgency,
		Search:   q.Search,
	}

	var (
		tasks []model.Task
		err   error
	)
	switch status := strings.TrimSpace(q.Status); {
	case status == "":
		tasks, err = h.taskService.ListOpenTasks(c.Request().Context(), filter)
	case strings.EqualFold(status, "all"):
		tasks, err = h.taskService.ListTasks(c.Request().Context(), "", filter)
	default:
		tasks, err = h.taskService.ListTasks(c.Request().Context(), status, filter)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskList(tasks))
}

func (h *Handler) ListTasksByOwner(c echo.Context) error {
	tasks, err := h.taskService.ListTasksByOwner(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskList(tasks))
}

func (h *Handler) ListAppliedTasks(c echo.Context) error {
	tasks, err := h.taskService.ListAppliedTasks(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskList(tasks))
}

func (h *Handler) ApplyForTask(c echo.Context) error {
	var req dto.ApplyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	app, err := h.taskService.ApplyForTask(
		c.Request().Context(),
		c.Param("id"),
		middleware.UserID(c),
		req.Message,
		req.ProposedBudget,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, app)
}

func (h *Handler) AcceptApplication(c echo.Context) error {
	task, err := h.taskService.AcceptApplication(
		c.Request().Context(),
		c.Param("id"),
		c.Param("applicationId"),
		middleware.UserID(c),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	task, err := h.taskService.CompleteTask(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) RateWorker(c echo.Context) error {
	var req dto.RateWorkerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	rating, err := h.taskService.RateWorker(
		c.Request().Context(),
		c.Param("id"),
		middleware.UserID(c),
		req.Stars,
		req.Review,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rating)
}

func (h *Handler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categories": constants.Categories()})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// taskList keeps empty listings encoded as [] rather than null.
func taskList(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
