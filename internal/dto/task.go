package dto

// ── 任务模块 DTO ──

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	Name      string `json:"name"       binding:"required,min=2,max=100"`
}

// UpdateTaskRequest 更新任务请求
type UpdateTaskRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	IsActive *bool   `json:"is_active"`
}

// TaskListRequest 任务列表查询参数
type TaskListRequest struct {
	ProjectID       string `form:"project_id" binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// TaskResponse 任务信息响应
type TaskResponse struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Project   *ProjectBrief `json:"project,omitempty"`
	Name      string        `json:"name"`
	IsActive  bool          `json:"is_active"`
}

// ProjectBrief 项目简要信息（嵌入任务响应）
type ProjectBrief struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ReportingType string `json:"reporting_type"`
}
