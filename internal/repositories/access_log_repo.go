package repositories

import (
	"fmt"

	"github.com/portal-unk/portal-api/internal/models"
	"gorm.io/gorm"
)

type AccessLogRepository interface {
	Create(entry *models.ShareAccessLog) error
	FindAllByShareLinkID(shareLinkID uint64, limit int) ([]models.ShareAccessLog, error)
}

type accessLogRepository struct {
	db *gorm.DB
}

var _ AccessLogRepository = (*accessLogRepository)(nil)

func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Create(entry *models.ShareAccessLog) error {
	return r.db.Create(entry).Error
}

func (r *accessLogRepository) FindAllByShareLinkID(shareLinkID uint64, limit int) ([]models.ShareAccessLog, error) {
	var entries []models.ShareAccessLog
	err := r.db.Where("share_link_id = ?", shareLinkID).
		Order("accessed_at desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询访问审计记录失败: %w", err)
	}
	return entries, nil
}
