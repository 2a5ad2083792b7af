package share

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/utils"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- 内存版依赖实现 ----

type fakeShareLinkRepo struct {
	mu     sync.Mutex
	nextID uint64
	links  map[uint64]*models.SharedMediaLink
}

func newFakeShareLinkRepo() *fakeShareLinkRepo {
	return &fakeShareLinkRepo{links: make(map[uint64]*models.SharedMediaLink)}
}

func (r *fakeShareLinkRepo) Create(link *models.SharedMediaLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	link.ID = r.nextID
	link.CreatedAt = time.Now()
	cp := *link
	r.links[link.ID] = &cp
	return nil
}

func (r *fakeShareLinkRepo) FindByToken(token string) (*models.SharedMediaLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.ShareToken == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeShareLinkRepo) FindAllByProducerID(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SharedMediaLink
	for _, l := range r.links {
		if l.ProducerID == producerID {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeShareLinkRepo) RecordAccess(token string, accessedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.ShareToken == token {
			l.AccessedCount++
			at := accessedAt
			l.LastAccessedAt = &at
			return nil
		}
	}
	return nil
}

func (r *fakeShareLinkRepo) DeleteByIDAndProducer(id, producerID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.ProducerID != producerID {
		return 0, nil
	}
	delete(r.links, id)
	return 1, nil
}

func (r *fakeShareLinkRepo) DeleteExpired(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, l := range r.links {
		if l.ExpiresAt.Before(now) {
			delete(r.links, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeShareLinkRepo) get(id uint64) *models.SharedMediaLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[id]
}

func (r *fakeShareLinkRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links)
}

type fakeDJRepo struct {
	profiles     map[uint64]*models.DJProfile
	associations map[[2]uint64]bool
}

func newFakeDJRepo() *fakeDJRepo {
	return &fakeDJRepo{
		profiles:     make(map[uint64]*models.DJProfile),
		associations: make(map[[2]uint64]bool),
	}
}

func (r *fakeDJRepo) CreateProfile(profile *models.DJProfile) error {
	profile.ID = uint64(len(r.profiles) + 1)
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeDJRepo) FindProfileByID(djID uint64) (*models.DJProfile, error) {
	return r.profiles[djID], nil
}

func (r *fakeDJRepo) FindProfileByUserID(userID uint64) (*models.DJProfile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeDJRepo) CreateAssociation(assoc *models.ProducerDJ) error {
	r.associations[[2]uint64{assoc.ProducerID, assoc.DJID}] = true
	return nil
}

func (r *fakeDJRepo) IsAssociated(producerID, djID uint64) (bool, error) {
	return r.associations[[2]uint64{producerID, djID}], nil
}

func (r *fakeDJRepo) FindDJsByProducerID(producerID uint64) ([]models.DJProfile, error) {
	var out []models.DJProfile
	for key, ok := range r.associations {
		if ok && key[0] == producerID {
			if p := r.profiles[key[1]]; p != nil {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

type fakeMediaLister struct {
	media map[uint64][]models.MediaFile
}

func (f *fakeMediaLister) ListByDJ(ctx context.Context, djID uint64) ([]models.MediaFile, error) {
	return f.media[djID], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *fakePublisher) Publish(queueName string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, body)
	return nil
}

// ---- 测试环境 ----

const (
	testProducerID = uint64(100)
	testDJID       = uint64(1)
)

type testEnv struct {
	svc       ShareLinkService
	linkRepo  *fakeShareLinkRepo
	djRepo    *fakeDJRepo
	publisher *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	djRepo := newFakeDJRepo()
	profile := &models.DJProfile{UserID: 10, StageName: "DJ Nova", Genre: "techno"}
	require.NoError(t, djRepo.CreateProfile(profile))
	require.NoError(t, djRepo.CreateAssociation(&models.ProducerDJ{ProducerID: testProducerID, DJID: profile.ID}))

	linkRepo := newFakeShareLinkRepo()
	publisher := &fakePublisher{}
	lister := &fakeMediaLister{media: map[uint64][]models.MediaFile{
		profile.ID: {
			{ID: 1, DJID: profile.ID, FileName: "demo-mix.mp3"},
			{ID: 2, DJID: profile.ID, FileName: "press-photo.jpg"},
		},
	}}

	cfg := &config.Config{}
	cfg.ShareLink.MinDays = 1
	cfg.ShareLink.MaxDays = 7

	return &testEnv{
		svc:       NewShareLinkService(linkRepo, djRepo, lister, publisher, cfg),
		linkRepo:  linkRepo,
		djRepo:    djRepo,
		publisher: publisher,
	}
}

// ---- 签发 ----

func TestIssueLink_TokensAreUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "")
		require.NoError(t, err)
		assert.False(t, seen[issued.ShareToken], "令牌重复: %s", issued.ShareToken)
		seen[issued.ShareToken] = true
	}
}

func TestIssueLink_DurationBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, days := range []int{-1, 0, 8, 30} {
		t.Run("rejects_"+strconv.Itoa(days), func(t *testing.T) {
			_, err := env.svc.IssueLink(ctx, testProducerID, testDJID, days, "1234")
			assert.ErrorIs(t, err, xerr.ErrInvalidShareDuration)
		})
	}

	for _, days := range []int{1, 7} {
		t.Run("accepts_"+strconv.Itoa(days), func(t *testing.T) {
			before := time.Now()
			issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, days, "1234")
			require.NoError(t, err)

			wantExpiry := before.Add(time.Duration(days) * 24 * time.Hour)
			assert.WithinDuration(t, wantExpiry, issued.ExpiresAt, 5*time.Second)
		})
	}
}

func TestIssueLink_PINValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, pin := range []string{"123", "12345", "12a4", "abcd", " 123"} {
		t.Run("rejects_"+pin, func(t *testing.T) {
			_, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, pin)
			assert.ErrorIs(t, err, xerr.ErrInvalidPIN)
		})
	}

	// 全零也是合法 PIN
	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "0000")
	require.NoError(t, err)
	assert.Equal(t, "0000", issued.PIN)
}

func TestIssueLink_GeneratesPINWhenEmpty(t *testing.T) {
	env := newTestEnv(t)

	issued, err := env.svc.IssueLink(context.Background(), testProducerID, testDJID, 3, "")
	require.NoError(t, err)
	assert.Len(t, issued.PIN, 4)
	assert.True(t, utils.IsValidPIN(issued.PIN))
}

func TestIssueLink_StoresOnlyPINHash(t *testing.T) {
	env := newTestEnv(t)

	issued, err := env.svc.IssueLink(context.Background(), testProducerID, testDJID, 3, "4821")
	require.NoError(t, err)

	stored := env.linkRepo.get(1)
	require.NotNil(t, stored)
	assert.NotEqual(t, issued.PIN, stored.PasswordHash)
	assert.True(t, utils.CheckPasswordHash(issued.PIN, stored.PasswordHash))
}

func TestIssueLink_RejectsUnknownOrUnsignedDJ(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.IssueLink(ctx, testProducerID, 999, 3, "1234")
	assert.ErrorIs(t, err, xerr.ErrDJNotFound)

	// DJ 存在但未与该制作人签约
	other := &models.DJProfile{UserID: 20, StageName: "DJ Umbra"}
	require.NoError(t, env.djRepo.CreateProfile(other))

	_, err = env.svc.IssueLink(ctx, testProducerID, other.ID, 3, "1234")
	assert.ErrorIs(t, err, xerr.ErrDJNotAssociated)
}

// ---- 访问验证 ----

func TestValidateAccess_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "7777")
	require.NoError(t, err)

	result, err := env.svc.ValidateAccess(ctx, issued.ShareToken, "7777", "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.DJ)
	assert.Equal(t, "DJ Nova", result.DJ.StageName)
	assert.Len(t, result.Media, 2)

	stored := env.linkRepo.get(1)
	assert.Equal(t, uint64(1), stored.AccessedCount)
	assert.NotNil(t, stored.LastAccessedAt)

	// 成功访问应发布审计事件
	env.publisher.mu.Lock()
	defer env.publisher.mu.Unlock()
	assert.Len(t, env.publisher.messages, 1)
}

func TestValidateAccess_UniformInvalidResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "7777")
	require.NoError(t, err)

	// 直接往仓库里放一条已过期的记录
	hash, err := utils.HashPassword("1111")
	require.NoError(t, err)
	expired := &models.SharedMediaLink{
		DJID:         testDJID,
		ProducerID:   testProducerID,
		ShareToken:   "expired-token",
		PasswordHash: hash,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.linkRepo.Create(expired))

	cases := []struct {
		name  string
		token string
		pin   string
	}{
		{"unknown_token", "no-such-token", "7777"},
		{"wrong_pin", issued.ShareToken, "0000"},
		{"expired_link", "expired-token", "1111"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := env.svc.ValidateAccess(ctx, tc.token, tc.pin, "203.0.113.9")
			// 三种无效情形的返回完全一致，不暴露具体原因
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Nil(t, result.DJ)
			assert.Nil(t, result.Media)
		})
	}

	// 失败的验证不应计入访问次数
	assert.Equal(t, uint64(0), env.linkRepo.get(1).AccessedCount)
}

func TestValidateAccess_ConcurrentCounting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "5555")
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			result, err := env.svc.ValidateAccess(ctx, issued.ShareToken, "5555", "203.0.113.9")
			assert.NoError(t, err)
			assert.True(t, result.Valid)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(n), env.linkRepo.get(1).AccessedCount)
}

// ---- 撤销 ----

func TestRevokeLink_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "1234")
	require.NoError(t, err)

	// 其他制作人撤销失败，且记录保持不变
	err = env.svc.RevokeLink(ctx, testProducerID+1, 1)
	assert.ErrorIs(t, err, xerr.ErrShareLinkNotFound)
	assert.NotNil(t, env.linkRepo.get(1))

	// 所有者撤销成功
	require.NoError(t, env.svc.RevokeLink(ctx, testProducerID, 1))
	assert.Nil(t, env.linkRepo.get(1))

	// 撤销后立即不可访问
	result, err := env.svc.ValidateAccess(ctx, issued.ShareToken, "1234", "203.0.113.9")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestRevokeLink_UnknownID(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.RevokeLink(context.Background(), testProducerID, 42)
	assert.ErrorIs(t, err, xerr.ErrShareLinkNotFound)
}

// ---- 过期清理 ----

func TestSweepExpired_DeletesOnlyExpiredAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 7, "1234")
	require.NoError(t, err)

	hash, err := utils.HashPassword("1111")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		expired := &models.SharedMediaLink{
			DJID:         testDJID,
			ProducerID:   testProducerID,
			ShareToken:   "expired-" + strconv.Itoa(i),
			PasswordHash: hash,
			ExpiresAt:    time.Now().Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, env.linkRepo.Create(expired))
	}

	deleted, err := env.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, 1, env.linkRepo.count())

	// 重复执行不报错，也不再删除任何记录
	deleted, err = env.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	assert.Equal(t, 1, env.linkRepo.count())
}

// ---- 列表 ----

func TestListProducerLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 3, "")
		require.NoError(t, err)
	}

	links, total, err := env.svc.ListProducerLinks(testProducerID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, links, 3)

	_, total, err = env.svc.ListProducerLinks(testProducerID+1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

// ---- 完整流程 ----

func TestShareLinkLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issued, err := env.svc.IssueLink(ctx, testProducerID, testDJID, 2, "")
	require.NoError(t, err)

	result, err := env.svc.ValidateAccess(ctx, issued.ShareToken, issued.PIN, "198.51.100.7")
	require.NoError(t, err)
	require.True(t, result.Valid)

	require.NoError(t, env.svc.RevokeLink(ctx, testProducerID, 1))

	result, err = env.svc.ValidateAccess(ctx, issued.ShareToken, issued.PIN, "198.51.100.7")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
