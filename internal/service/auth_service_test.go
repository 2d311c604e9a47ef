package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"timereport/backend/config"
	"timereport/backend/internal/dto"
	"timereport/backend/internal/model"
	"timereport/backend/internal/repository"
	"timereport/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:       userRepo,
		Client:     newMockClientRepo(),
		Project:    newMockProjectRepo(),
		Task:       newMockTaskRepo(),
		Attendance: newMockAttendanceRepo(),
		TimeLog:    newMockTimeLogRepo(),
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-0123456789abcdef",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	logger := zap.NewNop()

	// Redis 传 nil：黑名单检查降级跳过
	svc := NewAuthService(cfg, repo, jwtMgr, nil, logger)
	return svc, userRepo
}

func seedUser(repo *mockUserRepo, id, email, password, role string, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	repo.users[id] = &model.User{
		UserID:       id,
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("期望签发 token 对")
	}
	if resp.User.Role != model.RoleWorker {
		t.Errorf("期望 role=worker，实际: %s", resp.User.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_DisabledUser(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("期望签发新的 access token")
	}
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	})

	// access token 不能用于刷新
	_, err := svc.RefreshToken(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

// ── ChangePassword 测试 ──

func TestAuthService_ChangePassword_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 旧密码失效，新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "password123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@example.com",
		Password: "newpassword456",
	}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user-1", "worker@example.com", "password123", model.RoleWorker, true)

	err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword456",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong，实际: %v", err)
	}
}
