package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"calendar-api/internal/domain"
	"calendar-api/internal/service"
)

const monthLayout = "2006-01"

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   bool    `json:"completed"`
}

func (r taskRequest) toInput() (service.TaskInput, error) {
	input := service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		due, err := time.Parse(domain.DateLayout, strings.TrimSpace(*r.DueDate))
		if err != nil {
			return service.TaskInput{}, err
		}
		input.DueDate = &due
	}
	return input, nil
}

type TaskResponse struct {
	ID          int64   `json:"id"`
	UUID        string  `json:"uuid"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		UUID:        task.UUID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		v := task.DueDate.Format(domain.DateLayout)
		resp.DueDate = &v
	}
	return resp
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	return resp
}

func (h *Handler) bindTask(c *gin.Context) (service.TaskInput, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return service.TaskInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		badRequest(c, "due_date must be formatted as YYYY-MM-DD")
		return service.TaskInput{}, false
	}
	return input, true
}

func (h *Handler) createTask(c *gin.Context) {
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	var (
		tasks []domain.Task
		err   error
	)

	if raw, present := c.GetQuery("completed"); present {
		completed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			badRequest(c, "invalid flag completed")
			return
		}
		tasks, err = h.tasks.ListTasksByCompletion(c.Request.Context(), identityFrom(c), completed)
	} else {
		tasks, err = h.tasks.ListTasks(c.Request.Context(), identityFrom(c))
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasksToResponse(tasks))
}

func (h *Handler) listTasksByDate(c *gin.Context) {
	date, err := time.Parse(domain.DateLayout, c.Param("date"))
	if err != nil {
		badRequest(c, "date must be formatted as YYYY-MM-DD")
		return
	}

	tasks, err := h.tasks.ListTasksByDate(c.Request.Context(), identityFrom(c), date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasksToResponse(tasks))
}

func (h *Handler) listTasksByMonth(c *gin.Context) {
	month, err := time.Parse(monthLayout, c.Param("yearMonth"))
	if err != nil {
		badRequest(c, "month must be formatted as YYYY-MM")
		return
	}

	tasks, err := h.tasks.ListTasksByMonth(c.Request.Context(), identityFrom(c), month.Year(), month.Month())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasksToResponse(tasks))
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), identityFrom(c), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), identityFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
