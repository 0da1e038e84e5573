package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
	mocks "github.com/target/duogate/internal/mocks/auth"
	"github.com/target/duogate/internal/service"
)

// fakeDuoService is a test double for DuoServiceInterface.
type fakeDuoService struct {
	available   bool
	generate    twofactor.GenerateResult
	validate    twofactor.ValidateResult
	err         error
	lastClient  string
	lastOrgID   string
	lastUserID  string
	lastPayload string
}

func (f *fakeDuoService) capture(ctx context.Context, orgID, userID, payload string) {
	f.lastClient = service.InitiatingClient(ctx)
	f.lastOrgID, f.lastUserID, f.lastPayload = orgID, userID, payload
}

func (f *fakeDuoService) UserAvailable(ctx context.Context, userID string) (bool, error) {
	f.capture(ctx, "", userID, "")
	return f.available, f.err
}

func (f *fakeDuoService) UserAuthorize(ctx context.Context, userID string) (twofactor.GenerateResult, error) {
	f.capture(ctx, "", userID, "")
	return f.generate, f.err
}

func (f *fakeDuoService) UserValidate(ctx context.Context, userID, payload string) (twofactor.ValidateResult, error) {
	f.capture(ctx, "", userID, payload)
	return f.validate, f.err
}

func (f *fakeDuoService) OrganizationAvailable(ctx context.Context, orgID, userID string) (bool, error) {
	f.capture(ctx, orgID, userID, "")
	return f.available, f.err
}

func (f *fakeDuoService) OrganizationAuthorize(ctx context.Context, orgID, userID string) (twofactor.GenerateResult, error) {
	f.capture(ctx, orgID, userID, "")
	return f.generate, f.err
}

func (f *fakeDuoService) OrganizationValidate(
	ctx context.Context,
	orgID, userID, payload string,
) (twofactor.ValidateResult, error) {
	f.capture(ctx, orgID, userID, payload)
	return f.validate, f.err
}

type routerFixture struct {
	duo      *fakeDuoService
	sessions *service.SessionService
	handler  http.Handler
	session  *domainauth.Session
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	sessions := service.NewSessionService(service.SessionServiceOptions{Sessions: mocks.NewMemorySessionStore()})
	sess, err := sessions.CreateSession(context.Background(), service.CreateSessionInput{
		UserID: "user-a",
		Email:  "a@example.com",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	duo := &fakeDuoService{}
	return &routerFixture{
		duo:      duo,
		sessions: sessions,
		session:  sess,
		handler: NewRouter(RouterServices{
			TwoFactor:        duo,
			Sessions:         sessions,
			ClientNameHeader: "X-Client-Name",
			Metrics:          prometheus.NewRegistry(),
		}),
	}
}

func (f *routerFixture) do(t *testing.T, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: f.session.ID})
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestTwoFactorRoutes_RequireSession(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/api/two-factor/duo", "/api/organizations/org-1/two-factor/duo"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := f.do(t, http.MethodGet, "/api/two-factor/duo", "", func(r *http.Request) {
		r.Header.Del("Cookie")
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "unknown"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserStatus(t *testing.T) {
	f := newRouterFixture(t)
	f.duo.available = true

	rec := f.do(t, http.MethodGet, "/api/two-factor/duo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["available"])
	assert.Equal(t, "user-a", f.duo.lastUserID)
}

func TestUserAuthorize(t *testing.T) {
	f := newRouterFixture(t)
	f.duo.generate = twofactor.GenerateResult{Status: twofactor.StatusSuccess, RedirectURL: "https://host1/oauth/v1/authorize?x=1"}

	rec := f.do(t, http.MethodPost, "/api/two-factor/duo/authorize", "", func(r *http.Request) {
		r.Header.Set("X-Client-Name", "desktop")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://host1/oauth/v1/authorize?x=1", decodeBody(t, rec)["redirect_url"])
	assert.Equal(t, "desktop", f.duo.lastClient)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestUserAuthorize_Unavailable(t *testing.T) {
	f := newRouterFixture(t)

	for _, reason := range []twofactor.Reason{twofactor.ReasonNotConfigured, twofactor.ReasonProviderUnreachable} {
		f.duo.generate = twofactor.GenerateResult{Status: twofactor.StatusUnavailable, Reason: reason}
		rec := f.do(t, http.MethodPost, "/api/two-factor/duo/authorize", "")
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "two_factor_unavailable", body["error"])
		assert.NotContains(t, rec.Body.String(), string(reason))
	}
}

func TestUserValidate_Success(t *testing.T) {
	f := newRouterFixture(t)
	f.duo.validate = twofactor.ValidateResult{Status: twofactor.StatusSuccess, Verdict: twofactor.VerdictAllow}

	rec := f.do(t, http.MethodPost, "/api/two-factor/duo/validate", `{"token":" code123|state "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["verified"])
	assert.Equal(t, "code123|state", f.duo.lastPayload)

	sess, err := f.sessions.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.True(t, sess.TwoFactorVerified)
}

func TestUserValidate_FailuresLookIdentical(t *testing.T) {
	f := newRouterFixture(t)
	results := []twofactor.ValidateResult{
		{Status: twofactor.StatusUnavailable, Reason: twofactor.ReasonNotConfigured},
		{Status: twofactor.StatusInvalid, Reason: twofactor.ReasonMalformedCallback},
		{Status: twofactor.StatusInvalid, Reason: twofactor.ReasonStateMismatch},
		{Status: twofactor.StatusDenied, Reason: twofactor.ReasonVerdictDenied, Verdict: "deny"},
	}

	var bodies []string
	for _, res := range results {
		f.duo.validate = res
		rec := f.do(t, http.MethodPost, "/api/two-factor/duo/validate", `{"token":"a|b"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}

	sess, err := f.sessions.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.False(t, sess.TwoFactorVerified)
}

func TestUserValidate_BadJSON(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodPost, "/api/two-factor/duo/validate", `{"code":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
}

func TestUserValidate_BodyTooLarge(t *testing.T) {
	f := newRouterFixture(t)
	body := `{"token":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := f.do(t, http.MethodPost, "/api/two-factor/duo/validate", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request_too_large", decodeBody(t, rec)["error"])
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "upstream", err: apperrors.Wrap(errors.New("dial tcp"), apperrors.ErrCodeUpstream, "exchange"), code: http.StatusBadGateway},
		{name: "untrusted", err: apperrors.Wrap(errors.New("bad id_token"), apperrors.ErrCodeUntrusted, "verify"), code: http.StatusUnauthorized},
		{name: "not found", err: apperrors.NotFound("organization not found"), code: http.StatusNotFound},
		{name: "timeout", err: apperrors.Wrap(errors.New("dial tcp"), apperrors.ErrCodeTimeout, "exchange"), code: http.StatusGatewayTimeout},
		{name: "internal", err: errors.New("db down"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.duo.err = tt.err

			rec := f.do(t, http.MethodPost, "/api/organizations/org-9/two-factor/duo/validate", `{"token":"a|b"}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
			assert.NotContains(t, rec.Body.String(), "db down")
			assert.Equal(t, "org-9", f.duo.lastOrgID)
		})
	}
}

func TestOrganizationRoutes(t *testing.T) {
	f := newRouterFixture(t)
	f.duo.available = true
	f.duo.generate = twofactor.GenerateResult{Status: twofactor.StatusSuccess, RedirectURL: "https://host1/authorize"}

	rec := f.do(t, http.MethodGet, "/api/organizations/org-1/two-factor/duo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-1", f.duo.lastOrgID)

	rec = f.do(t, http.MethodPost, "/api/organizations/org-1/two-factor/duo/authorize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://host1/authorize", decodeBody(t, rec)["redirect_url"])
	assert.Equal(t, "user-a", f.duo.lastUserID)
}

func TestSessionStatusAndLogout(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, false, body["two_factor_verified"])

	rec = f.do(t, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)

	rec = f.do(t, http.MethodGet, "/auth/status", "")
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
}
