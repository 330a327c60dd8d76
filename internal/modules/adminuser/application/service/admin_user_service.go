package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"StorePilot/internal/modules/adminuser/application/dto/request"
	"StorePilot/internal/modules/adminuser/application/dto/respond"
	"StorePilot/internal/modules/adminuser/domain/entity"
	"StorePilot/internal/modules/adminuser/domain/repository"
	"StorePilot/pkg/util"
	"StorePilot/pkg/util/myjwt"
	"StorePilot/pkg/xerr"
	"StorePilot/pkg/zlog"

	"go.uber.org/zap"
)

// AdminUserService 管理员账号服务
type AdminUserService interface {
	// Register 创建账号，用户名重复时报错
	Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error)

	// Login 校验口令并签发 JWT
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
}

type adminUserServiceImpl struct {
	repo repository.AdminUserRepository
}

// NewAdminUserService 创建AdminUserService
func NewAdminUserService(repo repository.AdminUserRepository) AdminUserService {
	return &adminUserServiceImpl{repo: repo}
}

func (s *adminUserServiceImpl) Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, xerr.ErrParam
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("用户名已存在")
	}

	user := &entity.AdminUser{
		Uuid:     util.GenerateUUID(),
		Username: username,
		Nickname: strings.TrimSpace(req.Nickname),
	}
	user.PasswordHash = hashPassword(user.Uuid, req.Password)
	if err := s.repo.CreateAdminUser(ctx, user); err != nil {
		return nil, err
	}

	zlog.Info("admin user registered", zap.String("uuid", user.Uuid), zap.String("username", username))
	return &respond.RegisterRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
	}, nil
}

func (s *adminUserServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash != hashPassword(user.Uuid, req.Password) {
		return nil, fmt.Errorf("用户名或密码错误")
	}
	if user.Status != 0 {
		return nil, fmt.Errorf("账号已停用")
	}

	token, err := myjwt.GenerateToken(user.Uuid, user.Username)
	if err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Token:    token,
	}, nil
}

// hashPassword 以账号 UUID 为盐的 HMAC-SHA256
func hashPassword(uuid, password string) string {
	mac := hmac.New(sha256.New, []byte(uuid))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
