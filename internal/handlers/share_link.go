package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/utils"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/services/share"
	"go.uber.org/zap"
)

type ShareLinkHandler struct {
	shareLinkService share.ShareLinkService
}

func NewShareLinkHandler(shareLinkService share.ShareLinkService) *ShareLinkHandler {
	return &ShareLinkHandler{
		shareLinkService: shareLinkService,
	}
}

type IssueShareLinkRequest struct {
	DJID uint64 `json:"dj_id" binding:"required"`
	Days int    `json:"days" binding:"required"`
	PIN  string `json:"pin"` // 可选，为空时由服务端随机生成
}

// IssueLink handles issuing a new share link for a DJ.
// @Summary 签发分享链接
// @Description 为已签约的 DJ 签发一个带 PIN 保护的限时分享链接，明文 PIN 仅在本次响应中返回一次
// @Tags 分享链接
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IssueShareLinkRequest true "签发信息"
// @Success 200 {object} xerr.Response "签发成功"
// @Failure 400 {object} xerr.Response "有效期或 PIN 格式无效"
// @Failure 403 {object} xerr.Response "该 DJ 未与当前制作人签约"
// @Failure 404 {object} xerr.Response "DJ 不存在"
// @Router /api/v1/share-links [post]
func (h *ShareLinkHandler) IssueLink(c *gin.Context) {
	var req IssueShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "请求参数解析失败: "+err.Error())
		return
	}

	producerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	issued, err := h.shareLinkService.IssueLink(c.Request.Context(), producerID, req.DJID, req.Days, req.PIN)
	if err != nil {
		if errors.Is(err, xerr.ErrInvalidShareDuration) {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidShareDurationCode, err.Error())
		} else if errors.Is(err, xerr.ErrInvalidPIN) {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidPINCode, err.Error())
		} else if errors.Is(err, xerr.ErrDJNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.DJNotFoundCode, err.Error())
		} else if errors.Is(err, xerr.ErrDJNotAssociated) {
			xerr.Error(c, http.StatusForbidden, xerr.DJNotAssociatedCode, err.Error())
		} else {
			logger.Error("IssueLink: 签发分享链接失败",
				zap.Uint64("producerID", producerID), zap.Uint64("djID", req.DJID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "签发分享链接失败")
		}
		return
	}

	xerr.Success(c, http.StatusOK, "分享链接签发成功", gin.H{
		"share_token": issued.ShareToken,
		"pin":         issued.PIN,
		"expires_at":  issued.ExpiresAt,
	})
}

// ListMyLinks handles listing share links created by the authenticated producer.
// @Summary 列出自己签发的分享链接
// @Description 列出当前制作人签发的全部分享链接（含访问计数，不含 PIN）
// @Tags 分享链接
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1" default(1)
// @Param pageSize query int false "每页数量，默认为10" default(10)
// @Success 200 {object} xerr.Response "分享链接列表"
// @Router /api/v1/share-links/my [get]
func (h *ShareLinkHandler) ListMyLinks(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("pageSize", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	producerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	links, total, err := h.shareLinkService.ListProducerLinks(producerID, page, pageSize)
	if err != nil {
		logger.Error("ListMyLinks: 查询分享链接列表失败", zap.Uint64("producerID", producerID), zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "查询分享链接列表失败")
		return
	}

	xerr.Success(c, http.StatusOK, "查询成功", gin.H{
		"links": links,
		"total": total,
	})
}

// RevokeLink handles revoking a share link owned by the authenticated producer.
// @Summary 撤销分享链接
// @Description 撤销自己签发的分享链接，撤销后立即不可访问
// @Tags 分享链接
// @Security BearerAuth
// @Param link_id path int true "分享链接 ID"
// @Success 204 "撤销成功"
// @Failure 404 {object} xerr.Response "分享链接不存在或无权操作"
// @Router /api/v1/share-links/{link_id} [delete]
func (h *ShareLinkHandler) RevokeLink(c *gin.Context) {
	linkID, ok := parseIDParam(c, "link_id")
	if !ok {
		return
	}

	producerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.shareLinkService.RevokeLink(c.Request.Context(), producerID, linkID)
	if err != nil {
		// 不存在与非本人签发统一返回 404
		if errors.Is(err, xerr.ErrShareLinkNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.ShareLinkNotFoundCode, err.Error())
		} else {
			logger.Error("RevokeLink: 撤销分享链接失败", zap.Uint64("linkID", linkID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "撤销分享链接失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// SweepExpired handles on-demand cleanup of expired share links.
// @Summary 清理过期分享链接
// @Description 立即删除所有已过期的分享链接，返回删除数量。该操作幂等，可重复执行
// @Tags 分享链接
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response "清理结果"
// @Router /api/v1/admin/share-links/sweep [post]
func (h *ShareLinkHandler) SweepExpired(c *gin.Context) {
	deleted, err := h.shareLinkService.SweepExpired(c.Request.Context())
	if err != nil {
		logger.Error("SweepExpired: 清理过期分享链接失败", zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "清理过期分享链接失败")
		return
	}

	xerr.Success(c, http.StatusOK, "清理完成", gin.H{
		"deleted_count": deleted,
	})
}
