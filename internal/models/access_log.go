package models

import (
	"time"
)

// ShareAccessLog 对应 share_access_logs 表，记录分享链接的访问审计
// 计数的正确性由 shared_media_links 上的原子 UPDATE 保证，
// 这里只是异步落库的审计流水
type ShareAccessLog struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ShareLinkID uint64    `gorm:"not null;index" json:"share_link_id"`
	DJID        uint64    `gorm:"not null" json:"dj_id"`
	ProducerID  uint64    `gorm:"not null" json:"producer_id"`
	ClientIP    string    `gorm:"type:varchar(64)" json:"client_ip"`
	AccessedAt  time.Time `gorm:"not null" json:"accessed_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ShareAccessLog) TableName() string {
	return "share_access_logs"
}

// ShareAccessEvent 是验证成功后发布到消息队列的事件体
type ShareAccessEvent struct {
	ShareLinkID uint64    `json:"share_link_id"`
	DJID        uint64    `json:"dj_id"`
	ProducerID  uint64    `json:"producer_id"`
	ClientIP    string    `json:"client_ip"`
	AccessedAt  time.Time `json:"accessed_at"`
}
