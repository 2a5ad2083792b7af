package models

import (
	"time"
)

// SharedMediaLink 对应 shared_media_links 表
// 制作人为第三方(厂牌、主办方)签发的 DJ 媒体资料访问链接
// 链接由 share_token + 4位数字 PIN 保护，到期后失效
type SharedMediaLink struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DJID           uint64     `gorm:"not null;index" json:"dj_id"`
	ProducerID     uint64     `gorm:"not null;index" json:"producer_id"`
	ShareToken     string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"share_token"` // 唯一分享令牌，用于生成链接
	PasswordHash   string     `gorm:"type:varchar(255);not null" json:"-"`                      // PIN 的 bcrypt 哈希，永不输出
	ExpiresAt      time.Time  `gorm:"not null;index" json:"expires_at"`
	AccessedCount  uint64     `gorm:"type:bigint unsigned;not null;default:0" json:"accessed_count"`
	LastAccessedAt *time.Time `gorm:"default:null" json:"last_accessed_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定 GORM 使用的表名
func (SharedMediaLink) TableName() string {
	return "shared_media_links"
}

// IsExpired 判断链接是否已过期
// 过期的记录即使尚未被清理任务删除，也视为不可用
func (l *SharedMediaLink) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
