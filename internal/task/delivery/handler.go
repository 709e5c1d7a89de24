package delivery

import (
	"errors"
	"log"
	"net/http"
	"reliance-backend/internal/task/domain"
	"reliance-backend/internal/task/dto"
	"reliance-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// RegisterRoutes mounts the task routes on an authenticated group
func (h *TaskHandler) RegisterRoutes(tasks *gin.RouterGroup) {
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/:id", h.GetTask)
	tasks.PATCH("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
	tasks.GET("/:id/subtasks", h.ListSubtasks)
	tasks.POST("/:id/subtasks", h.CreateSubtask)
	tasks.POST("/:id/subtasks/:subtaskId", h.AddExistingSubtask)
	tasks.DELETE("/:id/subtasks/:subtaskId", h.RemoveSubtask)
	tasks.PATCH("/:id/subtasks/:subtaskId/order", h.UpdateSubtaskOrder)
}

// ListTasks returns the authenticated user's tasks
// GET /v1/tasks?valueZoneId=&status=&startDate=&endDate=&scheduledStart=&scheduledEnd=&deadline=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID := c.GetString("userID")

	var query dto.ListTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.taskUsecase.ListTasks(c.Request.Context(), userID, query.ToFilter())
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetTask returns a specific task
// GET /v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.GetTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
// POST /v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), userID, req.ToTask())
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update
// PATCH /v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), userID, c.Param("id"), req.ToPatch())
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task, optionally with its subtasks
// DELETE /v1/tasks/:id {deleteSubtasks?}
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := c.GetString("userID")

	opts, ok := bindDeleteOptions(c)
	if !ok {
		return
	}

	if err := h.taskUsecase.DeleteTask(c.Request.Context(), userID, c.Param("id"), opts.DeleteSubtasks); err != nil {
		handleTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubtasks returns the subtasks of a task sorted by order
// GET /v1/tasks/:id/subtasks
func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	userID := c.GetString("userID")

	subtasks, err := h.taskUsecase.ListSubtasks(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, subtasks)
}

// CreateSubtask creates a new task and links it under the parent
// POST /v1/tasks/:id/subtasks
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateSubtask(c.Request.Context(), userID, c.Param("id"), req.ToTask(), *req.Order)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// AddExistingSubtask links an existing task as the parent's last subtask
// POST /v1/tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) AddExistingSubtask(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.AddExistingSubtask(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// RemoveSubtask unlinks a subtask, optionally deleting it
// DELETE /v1/tasks/:id/subtasks/:subtaskId {deleteTask?}
func (h *TaskHandler) RemoveSubtask(c *gin.Context) {
	userID := c.GetString("userID")

	opts, ok := bindDeleteOptions(c)
	if !ok {
		return
	}

	err := h.taskUsecase.RemoveSubtask(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"), opts.DeleteTask)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateSubtaskOrder sets a subtask's order key
// PATCH /v1/tasks/:id/subtasks/:subtaskId/order
func (h *TaskHandler) UpdateSubtaskOrder(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateSubtaskOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateSubtaskOrder(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"), *req.Order)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// bindDeleteOptions accepts the cascade flags from the query string and, when present, the JSON body
func bindDeleteOptions(c *gin.Context) (dto.DeleteOptions, bool) {
	var opts dto.DeleteOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return opts, false
	}
	if c.Request.ContentLength > 0 {
		var body dto.DeleteOptions
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return opts, false
		}
		opts.DeleteSubtasks = opts.DeleteSubtasks || body.DeleteSubtasks
		opts.DeleteTask = opts.DeleteTask || body.DeleteTask
	}
	return opts, true
}

// handleTaskError maps use case errors to HTTP statuses
func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTask), errors.Is(err, domain.ErrSelfReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, domain.ErrSubtaskNotLinked):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found in main task"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this task"})
	case errors.Is(err, domain.ErrSubtaskAlreadyLinked):
		c.JSON(http.StatusConflict, gin.H{"error": "Subtask already exists in main task"})
	default:
		log.Printf("[TaskHandler] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
