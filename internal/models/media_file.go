package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaFile 对应 media_files 表，DJ 的媒体资料(混音、现场视频、宣传照等)
type MediaFile struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DJID      uint64 `gorm:"not null;index" json:"dj_id"`
	FileName  string `gorm:"type:varchar(255);not null" json:"file_name"`
	ObjectKey string `gorm:"type:varchar(512);not null" json:"-"` // 对象存储中的 key，不暴露给客户端
	Size      uint64 `gorm:"type:bigint unsigned;not null;default:0" json:"size"`
	MimeType  string `gorm:"type:varchar(128)" json:"mime_type"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MediaFile) TableName() string {
	return "media_files"
}

// MediaDoc 是写入 Elasticsearch 索引的媒体文档
type MediaDoc struct {
	MediaID   uint64    `json:"media_id"`
	DJID      uint64    `json:"dj_id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
