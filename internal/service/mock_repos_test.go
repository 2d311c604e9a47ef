package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role string, includeInactive bool, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if !includeInactive && !u.IsActive {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if u, ok := m.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

// ── Mock ClientRepository ──

type mockClientRepo struct {
	clients map[string]*model.Client
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*model.Client)}
}

func (m *mockClientRepo) Create(_ context.Context, client *model.Client) error {
	if client.ClientID == "" {
		client.ClientID = "client-" + client.Name
	}
	m.clients[client.ClientID] = client
	return nil
}

func (m *mockClientRepo) GetByID(_ context.Context, id string) (*model.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClientRepo) List(_ context.Context, includeInactive bool) ([]model.Client, error) {
	var result []model.Client
	for _, c := range m.clients {
		if !includeInactive && !c.IsActive {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockClientRepo) Update(_ context.Context, client *model.Client) error {
	m.clients[client.ClientID] = client
	return nil
}

func (m *mockClientRepo) Delete(_ context.Context, id string, _ string) error {
	if c, ok := m.clients[id]; ok {
		c.IsActive = false
	}
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects map[string]*model.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ProjectID == "" {
		project.ProjectID = "proj-" + project.Name
	}
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) List(_ context.Context, clientID string, includeInactive bool) ([]model.Project, error) {
	var result []model.Project
	for _, p := range m.projects {
		if clientID != "" && p.ClientID != clientID {
			continue
		}
		if !includeInactive && !p.IsActive {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string, _ string) error {
	if p, ok := m.projects[id]; ok {
		p.IsActive = false
	}
	return nil
}

// ── Mock TaskRepository ──
//
// 测试 seed 需将 Task.Project 直接挂在任务上（真实仓储经 Preload 填充）。

type mockTaskRepo struct {
	tasks map[string]*model.Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task) error {
	if task.TaskID == "" {
		task.TaskID = "task-" + task.Name
	}
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) List(_ context.Context, projectID string, includeInactive bool) ([]model.Task, error) {
	var result []model.Task
	for _, t := range m.tasks {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		if !includeInactive && !t.IsActive {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *model.Task) error {
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string, _ string) error {
	if t, ok := m.tasks[id]; ok {
		t.IsActive = false
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	attendances map[string]*model.Attendance
	nextID      int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{attendances: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, attendance *model.Attendance) error {
	if attendance.AttendanceID == "" {
		m.nextID++
		attendance.AttendanceID = fmt.Sprintf("att-%d", m.nextID)
	}
	if attendance.Version == 0 {
		attendance.Version = 1
	}
	m.attendances[attendance.AttendanceID] = attendance
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if a, ok := m.attendances[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (m *mockAttendanceRepo) ListByUserAndDate(_ context.Context, userID string, date time.Time, excludeID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.attendances {
		if a.UserID != userID || !sameDate(a.WorkDate, date) {
			continue
		}
		if excludeID != "" && a.AttendanceID == excludeID {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByUserAndRange(_ context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.attendances {
		if a.UserID != userID {
			continue
		}
		if a.WorkDate.Before(from) || a.WorkDate.After(to) {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAttendanceRepo) List(_ context.Context, userID string, from, to *time.Time, offset, limit int) ([]model.Attendance, int64, error) {
	var result []model.Attendance
	for _, a := range m.attendances {
		if userID != "" && a.UserID != userID {
			continue
		}
		if from != nil && a.WorkDate.Before(*from) {
			continue
		}
		if to != nil && a.WorkDate.After(*to) {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, attendance *model.Attendance) error {
	attendance.Version++
	m.attendances[attendance.AttendanceID] = attendance
	return nil
}

// ── Mock TimeLogRepository ──
//
// CountByProject 需要任务 → 项目映射；测试通过 projectOf 显式提供。

type mockTimeLogRepo struct {
	logs      map[string]*model.TimeLog
	projectOf map[string]string // taskID → projectID
	nextID    int
}

func newMockTimeLogRepo() *mockTimeLogRepo {
	return &mockTimeLogRepo{
		logs:      make(map[string]*model.TimeLog),
		projectOf: make(map[string]string),
	}
}

func (m *mockTimeLogRepo) Create(_ context.Context, log *model.TimeLog) error {
	if log.TimeLogID == "" {
		m.nextID++
		log.TimeLogID = fmt.Sprintf("log-%d", m.nextID)
	}
	m.logs[log.TimeLogID] = log
	return nil
}

func (m *mockTimeLogRepo) BatchCreate(ctx context.Context, logs []model.TimeLog) error {
	for i := range logs {
		if err := m.Create(ctx, &logs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTimeLogRepo) GetByID(_ context.Context, id string) (*model.TimeLog, error) {
	if l, ok := m.logs[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeLogRepo) ListByAttendance(_ context.Context, attendanceID string) ([]model.TimeLog, error) {
	var result []model.TimeLog
	for _, l := range m.logs {
		if l.AttendanceID == attendanceID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockTimeLogRepo) SumDurations(_ context.Context, attendanceID string, excludeID string) (int, error) {
	total := 0
	for _, l := range m.logs {
		if l.AttendanceID != attendanceID {
			continue
		}
		if excludeID != "" && l.TimeLogID == excludeID {
			continue
		}
		minutes, err := l.Minutes()
		if err != nil {
			return 0, err
		}
		total += minutes
	}
	return total, nil
}

func (m *mockTimeLogRepo) CountByAttendance(_ context.Context, attendanceID string) (int64, error) {
	var count int64
	for _, l := range m.logs {
		if l.AttendanceID == attendanceID {
			count++
		}
	}
	return count, nil
}

func (m *mockTimeLogRepo) CountByProject(_ context.Context, projectID string) (int64, error) {
	var count int64
	for _, l := range m.logs {
		if m.projectOf[l.TaskID] == projectID {
			count++
		}
	}
	return count, nil
}

func (m *mockTimeLogRepo) Update(_ context.Context, log *model.TimeLog) error {
	m.logs[log.TimeLogID] = log
	return nil
}

func (m *mockTimeLogRepo) Delete(_ context.Context, id string) error {
	delete(m.logs, id)
	return nil
}
