package models

import (
	"time"

	"gorm.io/gorm"
)

// DJProfile 对应 dj_profiles 表，记录 DJ 的演出资料
type DJProfile struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"not null;uniqueIndex" json:"user_id"` // 关联的账号，一个 DJ 账号只有一份资料
	StageName string `gorm:"type:varchar(128);not null" json:"stage_name"`
	Genre     string `gorm:"type:varchar(64)" json:"genre"`
	Bio       string `gorm:"type:text" json:"bio"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DJProfile) TableName() string {
	return "dj_profiles"
}

// ProducerDJ 对应 producer_djs 表，维护制作人与 DJ 的签约关系
// 只有签约的制作人才能为该 DJ 签发分享链接
type ProducerDJ struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProducerID uint64    `gorm:"not null;uniqueIndex:idx_producer_dj" json:"producer_id"`
	DJID       uint64    `gorm:"not null;uniqueIndex:idx_producer_dj;index" json:"dj_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ProducerDJ) TableName() string {
	return "producer_djs"
}
