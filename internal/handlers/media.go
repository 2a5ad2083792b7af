package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/utils"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/services/media"
	"github.com/portal-unk/portal-api/internal/services/roster"
	"go.uber.org/zap"
)

type MediaHandler struct {
	mediaService media.MediaService
	djService    roster.DJService
}

func NewMediaHandler(mediaService media.MediaService, djService roster.DJService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		djService:    djService,
	}
}

// myDJProfileID 解析当前登录 DJ 账号对应的 DJ 资料 ID
func (h *MediaHandler) myDJProfileID(c *gin.Context) (uint64, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return 0, false
	}
	profile, err := h.djService.GetProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, xerr.ErrDJNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.DJNotFoundCode, "请先创建 DJ 资料")
		} else {
			logger.Error("myDJProfileID: 查询 DJ 资料失败", zap.Uint64("userID", userID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "查询 DJ 资料失败")
		}
		return 0, false
	}
	return profile.ID, true
}

// Upload handles uploading a media file for the authenticated DJ.
// @Summary 上传媒体文件
// @Description DJ 上传一个媒体文件(混音小样、宣传照等)到自己的资料库
// @Tags 媒体
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "媒体文件"
// @Success 200 {object} xerr.Response "上传成功"
// @Failure 400 {object} xerr.Response "文件无效"
// @Router /api/v1/media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	djID, ok := h.myDJProfileID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "获取上传文件失败: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "打开上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	mediaFile, err := h.mediaService.Upload(c.Request.Context(), djID, fileHeader.Filename, fileHeader.Size, contentType, src)
	if err != nil {
		if errors.Is(err, xerr.ErrMediaFileInvalid) {
			xerr.Error(c, http.StatusBadRequest, xerr.MediaFileInvalidCode, err.Error())
		} else {
			logger.Error("Upload: 上传媒体文件失败",
				zap.Uint64("djID", djID), zap.String("fileName", fileHeader.Filename), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.StorageErrorCode, "上传媒体文件失败")
		}
		return
	}

	xerr.Success(c, http.StatusOK, "上传成功", gin.H{
		"media": mediaFile,
	})
}

// ListMine handles listing the authenticated DJ's media files.
// @Summary 列出自己的媒体文件
// @Description DJ 列出自己资料库中的全部媒体文件
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response "媒体列表"
// @Router /api/v1/media/my [get]
func (h *MediaHandler) ListMine(c *gin.Context) {
	djID, ok := h.myDJProfileID(c)
	if !ok {
		return
	}

	mediaList, err := h.mediaService.ListByDJ(c.Request.Context(), djID)
	if err != nil {
		logger.Error("ListMine: 查询媒体列表失败", zap.Uint64("djID", djID), zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "查询媒体列表失败")
		return
	}

	xerr.Success(c, http.StatusOK, "查询成功", gin.H{
		"media": mediaList,
		"total": len(mediaList),
	})
}

// Search handles searching media metadata by file name.
// @Summary 搜索媒体文件
// @Description 按文件名搜索媒体元数据
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Param q query string true "搜索关键词"
// @Success 200 {object} xerr.Response "搜索结果"
// @Router /api/v1/media/search [get]
func (h *MediaHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "搜索关键词不能为空")
		return
	}

	docs, err := h.mediaService.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, xerr.ErrSearchError) {
			xerr.Error(c, http.StatusServiceUnavailable, xerr.SearchErrorCode, "搜索服务不可用")
		} else {
			logger.Error("Search: 搜索媒体失败", zap.String("query", query), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.SearchErrorCode, "搜索媒体失败")
		}
		return
	}

	xerr.Success(c, http.StatusOK, "搜索成功", gin.H{
		"results": docs,
		"total":   len(docs),
	})
}

// Download handles redirecting to a presigned download URL for a media file.
// @Summary 下载媒体文件
// @Description 生成限时预签名下载 URL 并重定向
// @Tags 媒体
// @Security BearerAuth
// @Param media_id path int true "媒体文件 ID"
// @Success 302 "重定向到下载地址"
// @Failure 404 {object} xerr.Response "媒体文件不存在"
// @Router /api/v1/media/{media_id}/download [get]
func (h *MediaHandler) Download(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "media_id")
	if !ok {
		return
	}

	presignedURL, err := h.mediaService.GetDownloadURL(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, xerr.ErrMediaNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.MediaNotFoundCode, err.Error())
		} else {
			logger.Error("Download: 生成下载链接失败", zap.Uint64("mediaID", mediaID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.StorageErrorCode, "获取下载链接失败")
		}
		return
	}

	c.Redirect(http.StatusFound, presignedURL)
}

// Delete handles deleting one of the authenticated DJ's media files.
// @Summary 删除媒体文件
// @Description DJ 删除自己资料库中的一个媒体文件
// @Tags 媒体
// @Security BearerAuth
// @Param media_id path int true "媒体文件 ID"
// @Success 204 "删除成功"
// @Failure 404 {object} xerr.Response "媒体文件不存在"
// @Router /api/v1/media/{media_id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	djID, ok := h.myDJProfileID(c)
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(c, "media_id")
	if !ok {
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), djID, mediaID); err != nil {
		if errors.Is(err, xerr.ErrMediaNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.MediaNotFoundCode, err.Error())
		} else {
			logger.Error("Delete: 删除媒体文件失败",
				zap.Uint64("djID", djID), zap.Uint64("mediaID", mediaID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "删除媒体文件失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// streamZip 以 attachment 形式把 zip 流写给客户端
func streamZip(c *gin.Context, fileName string, reader io.ReadCloser) {
	defer reader.Close()

	encodedFileName := url.PathEscape(fileName)
	contentDisposition := fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, encodedFileName, encodedFileName)

	c.Header("Content-Disposition", contentDisposition)
	c.Header("Content-Type", "application/zip")

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.Error("streamZip: 流式传输ZIP内容失败", zap.String("fileName", fileName), zap.Error(err))
	}
}
