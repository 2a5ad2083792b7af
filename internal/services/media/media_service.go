package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/cache"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/storage"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/repositories"
	"go.uber.org/zap"
)

// 媒体列表缓存的 key 前缀与有效期
const (
	mediaListCacheKeyFmt = "dj:media:%d"
	mediaListCacheTTL    = 10 * time.Minute
)

// MediaService 定义了 DJ 媒体资料服务需要实现的接口
type MediaService interface {
	// Upload 上传一个媒体文件到对象存储并登记元数据
	Upload(ctx context.Context, djID uint64, fileName string, size int64, contentType string, reader io.Reader) (*models.MediaFile, error)
	// ListByDJ 列出 DJ 的全部媒体资料，带 Redis 缓存
	ListByDJ(ctx context.Context, djID uint64) ([]models.MediaFile, error)
	// GetDownloadURL 为单个媒体文件生成限时预签名下载URL
	GetDownloadURL(ctx context.Context, mediaID uint64) (string, error)
	// BundleZip 将 DJ 的全部媒体打包成 zip 流(press kit 下载)
	BundleZip(ctx context.Context, djID uint64) (io.ReadCloser, error)
	// Search 按文件名搜索媒体元数据(Elasticsearch)
	Search(ctx context.Context, query string) ([]models.MediaDoc, error)
	// Delete 删除媒体文件(对象存储 + 元数据)
	Delete(ctx context.Context, djID, mediaID uint64) error
}

type mediaService struct {
	mediaRepo      repositories.MediaRepository
	storageService storage.StorageService
	cacheService   cache.Cache
	esClient       *elasticsearch.Client
	cfg            *config.Config
}

var _ MediaService = (*mediaService)(nil)

// NewMediaService 创建一个新的 MediaService 实例
// esClient 可以为 nil，此时跳过索引与搜索功能
func NewMediaService(mediaRepo repositories.MediaRepository, storageService storage.StorageService, cacheService cache.Cache, esClient *elasticsearch.Client, cfg *config.Config) MediaService {
	return &mediaService{
		mediaRepo:      mediaRepo,
		storageService: storageService,
		cacheService:   cacheService,
		esClient:       esClient,
		cfg:            cfg,
	}
}

func (s *mediaService) bucketName() string {
	if s.cfg.Storage.Type == "aliyun_oss" {
		return s.cfg.AliyunOSS.BucketName
	}
	return s.cfg.MinIO.BucketName
}

// Upload 上传媒体文件
func (s *mediaService) Upload(ctx context.Context, djID uint64, fileName string, size int64, contentType string, reader io.Reader) (*models.MediaFile, error) {
	if fileName == "" || size <= 0 {
		return nil, xerr.ErrMediaFileInvalid
	}

	// 对象 key 带上随机前缀，避免同名文件互相覆盖
	objectKey := fmt.Sprintf("dj/%d/%s/%s", djID, uuid.New().String(), fileName)
	_, err := s.storageService.PutObject(ctx, s.bucketName(), objectKey, reader, size, contentType)
	if err != nil {
		logger.Error("Upload: 上传媒体文件到对象存储失败",
			zap.Uint64("djID", djID), zap.String("fileName", fileName), zap.Error(err))
		return nil, fmt.Errorf("上传媒体文件失败: %w", err)
	}

	media := &models.MediaFile{
		DJID:      djID,
		FileName:  fileName,
		ObjectKey: objectKey,
		Size:      uint64(size),
		MimeType:  contentType,
	}
	if err := s.mediaRepo.Create(media); err != nil {
		// 元数据落库失败时回收已上传的对象，保持无残留
		if rmErr := s.storageService.RemoveObject(ctx, s.bucketName(), objectKey); rmErr != nil {
			logger.Error("Upload: 回收对象失败", zap.String("objectKey", objectKey), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("登记媒体文件元数据失败: %w", err)
	}

	// 异步性要求不高，索引失败只记录日志，不影响上传结果
	s.indexMedia(ctx, media)

	// 新文件使列表缓存失效
	cacheKey := fmt.Sprintf(mediaListCacheKeyFmt, djID)
	if err := s.cacheService.Del(ctx, cacheKey); err != nil {
		logger.Warn("Upload: 清除媒体列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
	}

	logger.Info("Upload: 媒体文件上传成功",
		zap.Uint64("mediaID", media.ID), zap.Uint64("djID", djID), zap.String("fileName", fileName))
	return media, nil
}

// ListByDJ 列出 DJ 的媒体资料，优先读缓存
func (s *mediaService) ListByDJ(ctx context.Context, djID uint64) ([]models.MediaFile, error) {
	cacheKey := fmt.Sprintf(mediaListCacheKeyFmt, djID)

	var cached []models.MediaFile
	err := s.cacheService.Get(ctx, cacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// 缓存故障退化为直查数据库
		logger.Warn("ListByDJ: 读取媒体列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
	}

	media, err := s.mediaRepo.FindAllByDJID(djID)
	if err != nil {
		return nil, fmt.Errorf("查询媒体列表失败: %w", err)
	}

	if err := s.cacheService.Set(ctx, cacheKey, media, mediaListCacheTTL); err != nil {
		logger.Warn("ListByDJ: 写入媒体列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
	}
	return media, nil
}

// GetDownloadURL 生成单个媒体文件的预签名下载URL
func (s *mediaService) GetDownloadURL(ctx context.Context, mediaID uint64) (string, error) {
	media, err := s.mediaRepo.FindByID(mediaID)
	if err != nil {
		return "", fmt.Errorf("查询媒体文件失败: %w", err)
	}
	if media == nil {
		return "", xerr.ErrMediaNotFound
	}

	expiry := time.Duration(s.cfg.Storage.PresignedURLExpiry) * time.Minute
	presignedURL, err := s.storageService.GeneratePresignedURL(ctx, s.bucketName(), media.ObjectKey, expiry)
	if err != nil {
		logger.Error("GetDownloadURL: 生成预签名URL失败",
			zap.Uint64("mediaID", mediaID), zap.Error(err))
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return presignedURL, nil
}

// BundleZip 将 DJ 的全部媒体打包为 zip 并以流式返回
func (s *mediaService) BundleZip(ctx context.Context, djID uint64) (io.ReadCloser, error) {
	media, err := s.mediaRepo.FindAllByDJID(djID)
	if err != nil {
		return nil, fmt.Errorf("查询媒体列表失败: %w", err)
	}
	if len(media) == 0 {
		return nil, xerr.ErrMediaNotFound
	}

	pr, pw := io.Pipe()
	go func() {
		zw := zip.NewWriter(pw)
		for _, m := range media {
			obj, err := s.storageService.GetObject(ctx, s.bucketName(), m.ObjectKey)
			if err != nil {
				logger.Error("BundleZip: 获取对象失败", zap.String("objectKey", m.ObjectKey), zap.Error(err))
				pw.CloseWithError(err)
				return
			}

			w, err := zw.Create(m.FileName)
			if err != nil {
				obj.Reader.Close()
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(w, obj.Reader); err != nil {
				obj.Reader.Close()
				pw.CloseWithError(err)
				return
			}
			obj.Reader.Close()
		}
		if err := zw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	return pr, nil
}

// Delete 删除媒体文件及其元数据
func (s *mediaService) Delete(ctx context.Context, djID, mediaID uint64) error {
	media, err := s.mediaRepo.FindByID(mediaID)
	if err != nil {
		return fmt.Errorf("查询媒体文件失败: %w", err)
	}
	if media == nil || media.DJID != djID {
		// 不向调用方区分"不存在"与"不属于该DJ"
		return xerr.ErrMediaNotFound
	}

	if err := s.storageService.RemoveObject(ctx, s.bucketName(), media.ObjectKey); err != nil {
		logger.Error("Delete: 删除对象失败", zap.String("objectKey", media.ObjectKey), zap.Error(err))
		return fmt.Errorf("删除媒体文件失败: %w", err)
	}
	if err := s.mediaRepo.Delete(mediaID); err != nil {
		return fmt.Errorf("删除媒体文件元数据失败: %w", err)
	}

	cacheKey := fmt.Sprintf(mediaListCacheKeyFmt, djID)
	if err := s.cacheService.Del(ctx, cacheKey); err != nil {
		logger.Warn("Delete: 清除媒体列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
	}
	return nil
}

// indexMedia 将媒体元数据写入 Elasticsearch，失败只记录日志
func (s *mediaService) indexMedia(ctx context.Context, media *models.MediaFile) {
	if s.esClient == nil {
		return
	}

	doc := models.MediaDoc{
		MediaID:   media.ID,
		DJID:      media.DJID,
		FileName:  media.FileName,
		MimeType:  media.MimeType,
		CreatedAt: media.CreatedAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		logger.Error("indexMedia: 序列化媒体文档失败", zap.Error(err))
		return
	}

	res, err := s.esClient.Index(
		s.cfg.Elasticsearch.MediaIndex,
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(strconv.FormatUint(media.ID, 10)),
		s.esClient.Index.WithContext(ctx),
	)
	if err != nil {
		logger.Error("indexMedia: 索引媒体文档失败", zap.Uint64("mediaID", media.ID), zap.Error(err))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		logger.Error("indexMedia: Elasticsearch 返回错误", zap.String("status", res.Status()))
	}
}

// Search 按文件名搜索媒体元数据
func (s *mediaService) Search(ctx context.Context, query string) ([]models.MediaDoc, error) {
	if s.esClient == nil {
		return nil, xerr.ErrSearchError
	}

	var buf bytes.Buffer
	searchBody := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"file_name": query,
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(searchBody); err != nil {
		return nil, fmt.Errorf("构造搜索请求失败: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.cfg.Elasticsearch.MediaIndex),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		logger.Error("Search: 搜索媒体文档失败", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("搜索媒体失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("搜索媒体失败: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.MediaDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析搜索结果失败: %w", err)
	}

	docs := make([]models.MediaDoc, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
