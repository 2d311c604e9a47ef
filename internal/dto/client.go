package dto

// ── 客户模块 DTO ──

// CreateClientRequest 创建客户请求
type CreateClientRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateClientRequest 更新客户请求
type UpdateClientRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	IsActive     *bool   `json:"is_active"`
}

// ClientResponse 客户信息响应
type ClientResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	IsActive     bool   `json:"is_active"`
}
