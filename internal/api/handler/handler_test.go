package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock UserService ──

type mockUserService struct {
	getResult *dto.UserResponse
	getErr    error
}

func (m *mockUserService) Create(_ context.Context, _ *dto.CreateUserRequest, _ string) (*dto.UserResponse, error) {
	return nil, nil
}
func (m *mockUserService) GetByID(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockUserService) Update(_ context.Context, _ string, _ *dto.UpdateUserRequest, _, _ string) (*dto.UserResponse, error) {
	return nil, nil
}
func (m *mockUserService) Delete(_ context.Context, _ string, _ string) error {
	return nil
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	createResult *dto.AttendanceResponse
	createErr    error
	getResult    *dto.AttendanceResponse
	getErr       error
	listResult   []dto.AttendanceResponse
	listTotal    int64
	listErr      error
	updateResult *dto.AttendanceResponse
	updateErr    error
}

func (m *mockAttendanceService) Create(_ context.Context, _ *dto.CreateAttendanceRequest, _ string) (*dto.AttendanceResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAttendanceService) GetByID(_ context.Context, _ string, _, _ string) (*dto.AttendanceResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockAttendanceService) List(_ context.Context, _ *dto.AttendanceListRequest, _, _ string) ([]dto.AttendanceResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockAttendanceService) Update(_ context.Context, _ string, _ *dto.UpdateAttendanceRequest, _, _ string) (*dto.AttendanceResponse, error) {
	return m.updateResult, m.updateErr
}

// ── Mock TimeLogService ──

type mockTimeLogService struct {
	createResult *dto.TimeLogResponse
	createErr    error
	batchResult  []dto.TimeLogResponse
	batchErr     error
	listResult   []dto.TimeLogResponse
	listErr      error
	updateResult *dto.TimeLogResponse
	updateErr    error
	deleteErr    error
}

func (m *mockTimeLogService) Create(_ context.Context, _ *dto.CreateTimeLogRequest, _, _ string) (*dto.TimeLogResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockTimeLogService) BatchCreate(_ context.Context, _ *dto.BatchCreateTimeLogsRequest, _, _ string) ([]dto.TimeLogResponse, error) {
	return m.batchResult, m.batchErr
}
func (m *mockTimeLogService) ListByAttendance(_ context.Context, _ string, _, _ string) ([]dto.TimeLogResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockTimeLogService) Update(_ context.Context, _ string, _ *dto.UpdateTimeLogRequest, _, _ string) (*dto.TimeLogResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockTimeLogService) Delete(_ context.Context, _ string, _, _ string) error {
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportMonthlyReport(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCalendar(_ context.Context, _ string, _, _ time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "worker")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func setAdminAuth(c *gin.Context) {
	c.Set("user_id", "test-admin-id")
	c.Set("role", "admin")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	// 验证 Set-Cookie 头
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" && c.Value == "test-refresh-token" {
			found = true
		}
	}
	if !found {
		t.Error("expected refresh_token cookie to be set")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_FromCookie(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Missing(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" && c.MaxAge >= 0 {
			t.Error("expected refresh_token cookie to be cleared")
		}
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Create_Success(t *testing.T) {
	d := 480
	mock := &mockAttendanceService{
		createResult: &dto.AttendanceResponse{
			ID:              "att-1",
			Status:          "work",
			DurationMinutes: &d,
		},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendances", jsonBody(dto.CreateAttendanceRequest{
		WorkDate:  "2026-08-17",
		Status:    "work",
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("17:00"),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendances", func(c *gin.Context) {
		setAuth(c)
		h.CreateAttendance(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAttendanceHandler_Create_BadJSON(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendances", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendances", func(c *gin.Context) {
		setAuth(c)
		h.CreateAttendance(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrAttendanceNotFound, 404, 16001},
		{"InvalidStatus", service.ErrInvalidStatus, 400, 16002},
		{"MissingTimes", service.ErrMissingTimes, 400, 16005},
		{"InvalidRange", service.ErrInvalidRange, 400, 16006},
		{"MidnightCrossing", service.ErrMidnightCrossing, 400, 16007},
		{"ExclusiveConflict", service.ErrExclusiveConflict, 409, 16008},
		{"OverlapConflict", service.ErrOverlapConflict, 409, 16009},
		{"LogsExist", service.ErrLogsExistConflict, 409, 16010},
		{"Coverage", &service.InsufficientCoverageError{Have: 200, Need: 480}, 409, 16011},
		{"NoPermission", service.ErrNoPermission, 403, 10003},
		{"Unknown", errors.New("boom"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{updateErr: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/attendances/att-1", jsonBody(dto.UpdateAttendanceRequest{
				Status: strPtr("work"),
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PUT("/attendances/:id", func(c *gin.Context) {
				setAuth(c)
				h.UpdateAttendance(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// TimeLogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimeLogHandler_Create_CoverageConflict(t *testing.T) {
	mock := &mockTimeLogService{createErr: &service.InsufficientCoverageError{Have: 200, Need: 480}}
	h := NewTimeLogHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/time-logs", jsonBody(dto.CreateTimeLogRequest{
		AttendanceID: "11111111-1111-1111-1111-111111111111",
		TimeLogEntry: dto.TimeLogEntry{
			TaskID:          "22222222-2222-2222-2222-222222222222",
			DurationMinutes: intPtr(200),
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/time-logs", func(c *gin.Context) {
		setAuth(c)
		h.CreateTimeLog(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16011 {
		t.Errorf("expected code 16011, got %d", resp.Code)
	}
}

func TestTimeLogHandler_BatchCreate_Success(t *testing.T) {
	mock := &mockTimeLogService{
		batchResult: []dto.TimeLogResponse{
			{ID: "log-1", Minutes: 200},
			{ID: "log-2", Minutes: 300},
		},
	}
	h := NewTimeLogHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/time-logs/batch", jsonBody(dto.BatchCreateTimeLogsRequest{
		AttendanceID: "11111111-1111-1111-1111-111111111111",
		Entries: []dto.TimeLogEntry{
			{TaskID: "22222222-2222-2222-2222-222222222222", DurationMinutes: intPtr(200)},
			{TaskID: "22222222-2222-2222-2222-222222222222", DurationMinutes: intPtr(300)},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/time-logs/batch", func(c *gin.Context) {
		setAuth(c)
		h.BatchCreateTimeLogs(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestTimeLogHandler_Delete_FieldMismatch(t *testing.T) {
	h := NewTimeLogHandler(&mockTimeLogService{updateErr: service.ErrReportingFieldMismatch})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/time-logs/log-1", jsonBody(dto.UpdateTimeLogRequest{
		DurationMinutes: intPtr(100),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/time-logs/:id", func(c *gin.Context) {
		setAuth(c)
		h.UpdateTimeLog(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 17003 {
		t.Errorf("expected code 17003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_MonthlyReport_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "考勤报表_张三_2026-08.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/monthly-report?month=2026-08", nil)

	r := gin.New()
	r.GET("/export/monthly-report", func(c *gin.Context) {
		setAuth(c)
		h.ExportMonthlyReport(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_MonthlyReport_OtherUserForbidden(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/monthly-report?month=2026-08&user_id=someone-else", nil)

	r := gin.New()
	r.GET("/export/monthly-report", func(c *gin.Context) {
		setAuth(c) // worker
		h.ExportMonthlyReport(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestExportHandler_MonthlyReport_AdminCanExportOthers(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "考勤报表_李四_2026-08.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/monthly-report?month=2026-08&user_id=other-user", nil)

	r := gin.New()
	r.GET("/export/monthly-report", func(c *gin.Context) {
		setAdminAuth(c)
		h.ExportMonthlyReport(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestExportHandler_Calendar_BadDates(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/calendar?from=bad&to=2026-08-31", nil)

	r := gin.New()
	r.GET("/export/calendar", func(c *gin.Context) {
		setAuth(c)
		h.ExportCalendar(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
