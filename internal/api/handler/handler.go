package handler

import "timereport/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Client     *ClientHandler
	Project    *ProjectHandler
	Task       *TaskHandler
	Attendance *AttendanceHandler
	TimeLog    *TimeLogHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, svc.User),
		User:       NewUserHandler(svc.User),
		Client:     NewClientHandler(svc.Client),
		Project:    NewProjectHandler(svc.Project),
		Task:       NewTaskHandler(svc.Task),
		Attendance: NewAttendanceHandler(svc.Attendance),
		TimeLog:    NewTimeLogHandler(svc.TimeLog),
		Export:     NewExportHandler(svc.Export),
	}
}
