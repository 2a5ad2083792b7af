package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/services/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubShareLinkService 只认一组固定的令牌和 PIN
type stubShareLinkService struct {
	token string
	pin   string
}

func (s *stubShareLinkService) IssueLink(ctx context.Context, producerID, djID uint64, days int, pin string) (*share.IssuedLink, error) {
	panic("not used")
}

func (s *stubShareLinkService) ValidateAccess(ctx context.Context, token, pin, clientIP string) (*share.ValidationResult, error) {
	if token == s.token && pin == s.pin {
		return &share.ValidationResult{
			Valid: true,
			DJ:    &models.DJProfile{ID: 1, StageName: "DJ Nova"},
			Media: []models.MediaFile{{ID: 1, FileName: "demo-mix.mp3"}},
		}, nil
	}
	return &share.ValidationResult{Valid: false}, nil
}

func (s *stubShareLinkService) RevokeLink(ctx context.Context, producerID, linkID uint64) error {
	panic("not used")
}

func (s *stubShareLinkService) ListProducerLinks(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error) {
	panic("not used")
}

func (s *stubShareLinkService) SweepExpired(ctx context.Context) (int64, error) {
	panic("not used")
}

func newValidateRouter(svc share.ShareLinkService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSharePublicHandler(svc, nil)
	router.POST("/api/v1/share/validate", handler.Validate)
	return router
}

func postValidate(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/share/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidate_Success(t *testing.T) {
	router := newValidateRouter(&stubShareLinkService{token: "tok-1", pin: "1234"})

	w := postValidate(t, router, `{"share_token":"tok-1","pin":"1234"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Valid bool              `json:"valid"`
			DJ    *models.DJProfile `json:"dj"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.DJ)
	assert.Equal(t, "DJ Nova", resp.Data.DJ.StageName)
}

func TestValidate_InvalidCasesShareOneResponseShape(t *testing.T) {
	router := newValidateRouter(&stubShareLinkService{token: "tok-1", pin: "1234"})

	bodies := map[string]string{
		"unknown_token": `{"share_token":"tok-x","pin":"1234"}`,
		"wrong_pin":     `{"share_token":"tok-1","pin":"0000"}`,
	}

	var responses []string
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := postValidate(t, router, body)
			// 无效情形也返回 200，由 valid 字段表达结果
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data struct {
					Valid bool            `json:"valid"`
					DJ    json.RawMessage `json:"dj"`
					Media json.RawMessage `json:"media"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Data.Valid)
			assert.Empty(t, resp.Data.DJ)
			assert.Empty(t, resp.Data.Media)

			responses = append(responses, w.Body.String())
		})
	}

	// 不同的失败原因对外不可区分
	require.Len(t, responses, 2)
	assert.Equal(t, responses[0], responses[1])
}

func TestValidate_MalformedBody(t *testing.T) {
	router := newValidateRouter(&stubShareLinkService{token: "tok-1", pin: "1234"})

	w := postValidate(t, router, `{"share_token":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
