package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

// ProjectHandler 项目模块 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ProjectService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// CreateProject 创建项目（管理员）
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, project)
}

// GetProject 查询项目
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, project)
}

// ListProjects 项目列表
// GET /api/v1/projects?client_id=xxx
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var req dto.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	projects, err := h.projectSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, projects)
}

// UpdateProject 更新项目（管理员）
// PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.projectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, project)
}

// DeleteProject 停用项目（管理员，软删除）
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.projectSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ProjectHandler) handleProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 14001, "项目不存在")
	case errors.Is(err, service.ErrClientNotFound):
		response.NotFound(c, 13001, "客户不存在")
	case errors.Is(err, service.ErrInvalidReportingType):
		response.BadRequest(c, 14002, "上报方式无效")
	case errors.Is(err, service.ErrReportingTypeLocked):
		response.Conflict(c, 14003, "项目下已存在工时记录，上报方式不可变更")
	default:
		response.InternalError(c)
	}
}
