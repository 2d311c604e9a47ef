package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

// ClientHandler 客户模块 HTTP 处理器
type ClientHandler struct {
	clientSvc service.ClientService
}

// NewClientHandler 创建 ClientHandler
func NewClientHandler(clientSvc service.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

// CreateClient 创建客户（管理员）
// POST /api/v1/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	client, err := h.clientSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, client)
}

// GetClient 查询客户
// GET /api/v1/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, client)
}

// ListClients 客户列表
// GET /api/v1/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	clients, err := h.clientSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, clients)
}

// UpdateClient 更新客户（管理员）
// PUT /api/v1/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	client, err := h.clientSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, client)
}

// DeleteClient 停用客户（管理员，软删除）
// DELETE /api/v1/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.clientSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ClientHandler) handleClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		response.NotFound(c, 13001, "客户不存在")
	default:
		response.InternalError(c)
	}
}
