package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"hashop_store/internal/domain/admin/repository"
	"hashop_store/internal/pkg/config"
	"hashop_store/pkg/utils"

	"go.uber.org/zap"
)

var ErrBadCredentials = errors.New("invalid username or password")

// LoginResult carries the issued token and its lifetime.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// AdminService authenticates the single operator account and serves the
// dashboard. The storefront has no customer accounts.
type AdminService interface {
	Login(username, password string) (*LoginResult, error)
	Dashboard(ctx context.Context) (*repository.DashboardStats, error)
	RevenueByDay(ctx context.Context, days int) ([]repository.RevenuePoint, error)
}

type adminService struct {
	admin config.AdminConfig
	jwt   config.JWTConfig
	stats repository.StatsRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewAdminService(admin config.AdminConfig, jwt config.JWTConfig,
	stats repository.StatsRepository, log *zap.Logger) AdminService {
	return &adminService{admin: admin, jwt: jwt, stats: stats, log: log, now: time.Now}
}

func (s *adminService) Login(username, password string) (*LoginResult, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !userOK || !passOK {
		s.log.Warn("admin login failed", zap.String("username", username))
		return nil, ErrBadCredentials
	}

	token, _, err := utils.GenerateToken(s.jwt.Secret, s.admin.Username, "admin", s.jwt.Expire)
	if err != nil {
		return nil, err
	}

	s.log.Info("admin logged in", zap.String("username", username))
	return &LoginResult{
		Token:     token,
		ExpiresAt: s.now().Add(time.Duration(s.jwt.Expire) * time.Hour),
		Username:  s.admin.Username,
	}, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	return s.stats.Dashboard(ctx, s.now())
}

func (s *adminService) RevenueByDay(ctx context.Context, days int) ([]repository.RevenuePoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return s.stats.RevenueByDay(ctx, days)
}
