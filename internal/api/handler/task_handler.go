package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

// TaskHandler 任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc service.TaskService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// CreateTask 创建任务（管理员）
// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.Created(c, task)
}

// GetTask 查询任务
// GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.OK(c, task)
}

// ListTasks 任务列表
// GET /api/v1/tasks?project_id=xxx
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var req dto.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tasks, err := h.taskSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, tasks)
}

// UpdateTask 更新任务（管理员）
// PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	task, err := h.taskSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.OK(c, task)
}

// DeleteTask 停用任务（管理员，软删除）
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.taskSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 15001, "任务不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 14001, "项目不存在")
	case errors.Is(err, service.ErrTaskInactive):
		response.BadRequest(c, 15002, "任务已停用")
	default:
		response.InternalError(c)
	}
}
