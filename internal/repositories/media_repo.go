package repositories

import (
	"errors"
	"fmt"

	"github.com/portal-unk/portal-api/internal/models"
	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(media *models.MediaFile) error
	FindByID(id uint64) (*models.MediaFile, error)
	FindAllByDJID(djID uint64) ([]models.MediaFile, error)
	Delete(id uint64) error
}

type mediaRepository struct {
	db *gorm.DB
}

var _ MediaRepository = (*mediaRepository)(nil)

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(media *models.MediaFile) error {
	return r.db.Create(media).Error
}

func (r *mediaRepository) FindByID(id uint64) (*models.MediaFile, error) {
	var media models.MediaFile
	err := r.db.Where("id = ?", id).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询媒体文件失败: %w", err)
	}
	return &media, nil
}

func (r *mediaRepository) FindAllByDJID(djID uint64) ([]models.MediaFile, error) {
	var media []models.MediaFile
	err := r.db.Where("dj_id = ?", djID).Order("created_at desc").Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("查询 DJ 媒体列表失败: %w", err)
	}
	return media, nil
}

// 软删除记录(设置deleted_at字段)
func (r *mediaRepository) Delete(id uint64) error {
	return r.db.Delete(&models.MediaFile{}, id).Error
}
