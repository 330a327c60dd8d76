package entity

import "time"

// AdminUser 商城后台管理员账号
type AdminUser struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid         string    `gorm:"column:uuid;type:char(36);not null;uniqueIndex:uniq_admin_user_uuid"`
	Username     string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex:uniq_admin_user_name"`
	Nickname     string    `gorm:"column:nickname;type:varchar(64)"`
	PasswordHash string    `gorm:"column:password_hash;type:char(64);not null"`
	Status       int8      `gorm:"column:status;type:tinyint;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (AdminUser) TableName() string { return "admin_user" }
