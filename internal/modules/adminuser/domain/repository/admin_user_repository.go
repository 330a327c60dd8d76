package repository

import (
	"context"

	"StorePilot/internal/modules/adminuser/domain/entity"
)

// AdminUserRepository 管理员账号仓储接口
type AdminUserRepository interface {
	// CreateAdminUser 创建账号
	CreateAdminUser(ctx context.Context, user *entity.AdminUser) error

	// GetByUsername 按用户名获取，不存在返回 nil, nil
	GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error)

	// GetByUuid 按 UUID 获取，不存在返回 nil, nil
	GetByUuid(ctx context.Context, uuid string) (*entity.AdminUser, error)
}
