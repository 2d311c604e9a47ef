package dto

// ── 项目模块 DTO ──

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ClientID      string `json:"client_id"      binding:"required,uuid"`
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	ReportingType string `json:"reporting_type" binding:"required,oneof=duration startEnd"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=2,max=100"`
	ReportingType *string `json:"reporting_type" binding:"omitempty,oneof=duration startEnd"`
	IsActive      *bool   `json:"is_active"`
}

// ProjectListRequest 项目列表查询参数
type ProjectListRequest struct {
	ClientID        string `form:"client_id" binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// ProjectResponse 项目信息响应
type ProjectResponse struct {
	ID            string       `json:"id"`
	ClientID      string       `json:"client_id"`
	Client        *ClientBrief `json:"client,omitempty"`
	Name          string       `json:"name"`
	ReportingType string       `json:"reporting_type"`
	IsActive      bool         `json:"is_active"`
}

// ClientBrief 客户简要信息（嵌入项目响应）
type ClientBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
