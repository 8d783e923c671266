package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/core/lock"
	"fountain-monitor/internal/core/server"
	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/repo"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/transport/http/handler"
	resp "fountain-monitor/internal/transport/http/response"
	"fountain-monitor/internal/upstream/upstreamtest"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type stack struct {
	api   *gin.Engine
	admin *gin.Engine
	src   *upstreamtest.Source
}

var today = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

func newStack(t *testing.T) *stack {
	t.Helper()
	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}

	src := upstreamtest.New()
	src.AddFountain(domain.Fountain{ID: 1, Description: "plaza"})
	src.AddFountain(domain.Fountain{ID: 2, Description: "park"})
	src.AddAnalysis(
		domain.WaterAnalysis{ID: 10, RadonConcentration: 10, FountainID: 1, Date: domain.DateOf(today)},
		domain.WaterAnalysis{ID: 11, RadonConcentration: 20, FountainID: 2, Date: domain.DateOf(today)},
	)
	src.AddDevice(domain.Device{ID: 5, Model: "RX-1"})

	users := repo.NewMemoryUserRepo()
	locker := lock.NewKeyedMutex()
	userSvc := service.NewUsers(users, locker, log)
	favSvc := service.NewFavorites(users, src, locker, log, 2)
	statSvc := service.NewStatistics(src, repo.NewMemoryStatisticsRepo(), log,
		service.WithClock(func() time.Time { return today }))

	opts := server.Options{Name: "test", Mode: gin.TestMode}
	return &stack{
		api: NewAPIEngine(log, opts, jwter,
			handler.NewAuth(userSvc, jwter),
			handler.NewUsers(userSvc),
			handler.NewFavorites(favSvc),
			handler.NewStatistics(statSvc),
			handler.NewCatalog(src, src),
		),
		admin: NewAdminEngine(log, opts, jwter,
			handler.NewUsers(userSvc),
			handler.NewStatistics(statSvc),
			handler.NewDevices(src),
		),
		src: src,
	}
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func signup(t *testing.T, s *stack, email, role string) session {
	t.Helper()
	env := call(t, s.api, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": email, "password": "secret1", "role": role,
	})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	var out session
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out
}

func TestProbes(t *testing.T) {
	s := newStack(t)
	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		s.api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newStack(t)
	client := signup(t, s, "client@example.com", "Client")
	require.Equal(t, domain.RoleClient, client.User.Role)

	env := call(t, s.api, http.MethodPost, "/api/v1/auth/signup", "", gin.H{"email": "client@example.com", "password": "secret1"})
	require.Equal(t, resp.CodeBadRequest, env.Code)

	env = call(t, s.api, http.MethodPost, "/api/v1/auth/signin", "", gin.H{"email": "client@example.com", "password": "nope"})
	require.Equal(t, resp.CodeUnauthorized, env.Code)

	env = call(t, s.api, http.MethodPost, "/api/v1/auth/signin", "", gin.H{"email": "client@example.com", "password": "secret1"})
	require.Equal(t, resp.CodeOK, env.Code)

	env = call(t, s.api, http.MethodGet, "/api/v1/me", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var me domain.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, client.User.ID, me.ID)

	require.Equal(t, resp.CodeUnauthorized, call(t, s.api, http.MethodGet, "/api/v1/me", "", nil).Code)
	require.Equal(t, resp.CodeUnauthorized, call(t, s.api, http.MethodGet, "/api/v1/me", "garbage", nil).Code)
}

func TestFavoritesEndpoints(t *testing.T) {
	s := newStack(t)
	client := signup(t, s, "c@example.com", "Client")
	other := signup(t, s, "o@example.com", "Client")
	base := "/api/v1/users/" + client.User.ID + "/favorites"

	env := call(t, s.api, http.MethodPost, base+"/fountains/1", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	var res domain.Resource
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, "plaza", res.Fountain.Description)

	require.Equal(t, resp.CodeOK, call(t, s.api, http.MethodPost, base+"/fountains/2", client.Token, nil).Code)

	env = call(t, s.api, http.MethodGet, base+"/fountains", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var list []domain.Resource
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)

	env = call(t, s.api, http.MethodGet, base+"/fountains/first/1", client.Token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.EqualValues(t, 1, list[0].ID)

	env = call(t, s.api, http.MethodGet, base+"/fountains/contains/2", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.JSONEq(t, `{"id":2,"favorite":true}`, string(env.Data))

	require.Equal(t, resp.CodeOK, call(t, s.api, http.MethodDelete, base+"/fountains/2", client.Token, nil).Code)
	env = call(t, s.api, http.MethodGet, base+"/fountains/contains/2", client.Token, nil)
	require.JSONEq(t, `{"id":2,"favorite":false}`, string(env.Data))

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
	}{
		{"anonymous", http.MethodGet, base + "/fountains", "", resp.CodeUnauthorized},
		{"other user reads", http.MethodGet, base + "/fountains", other.Token, resp.CodeForbidden},
		{"other user writes", http.MethodPost, base + "/fountains/1", other.Token, resp.CodeForbidden},
		{"wrong category", http.MethodPost, base + "/analyses/10", client.Token, resp.CodeForbidden},
		{"unknown fountain", http.MethodPost, base + "/fountains/99", client.Token, resp.CodeNotFound},
		{"contains unknown", http.MethodGet, base + "/fountains/contains/99", client.Token, resp.CodeBadRequest},
		{"bad id", http.MethodPost, base + "/fountains/abc", client.Token, resp.CodeBadRequest},
		{"first zero", http.MethodGet, base + "/fountains/first/0", client.Token, resp.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, call(t, s.api, tc.method, tc.path, tc.token, nil).Code)
		})
	}

	s.src.SetErr(domain.ErrSourceUnavailable)
	require.Equal(t, resp.CodeUnavailable, call(t, s.api, http.MethodGet, base+"/fountains", client.Token, nil).Code)
	s.src.SetErr(&domain.SourceError{StatusCode: 500, Op: "get_fountain"})
	require.Equal(t, resp.CodeBadGateway, call(t, s.api, http.MethodGet, base+"/fountains", client.Token, nil).Code)
}

func TestStatisticsEndpoints(t *testing.T) {
	s := newStack(t)
	tester := signup(t, s, "t@example.com", "Tester")
	client := signup(t, s, "c@example.com", "Client")

	require.Equal(t, resp.CodeForbidden, call(t, s.api, http.MethodPost, "/api/v1/statistics", client.Token, nil).Code)

	env := call(t, s.api, http.MethodPost, "/api/v1/statistics", tester.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	var st domain.Statistics
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.Equal(t, 2, st.TotalAnalyses)
	require.Equal(t, 15.0, st.AverageRadonLevel)

	env = call(t, s.api, http.MethodPost, "/api/v1/statistics?date=2026-06-09", tester.Token, nil)
	require.Equal(t, resp.CodeBadRequest, env.Code)
	require.Equal(t, resp.CodeBadRequest, call(t, s.api, http.MethodPost, "/api/v1/statistics?date=June", tester.Token, nil).Code)
	require.Equal(t, resp.CodeOK, call(t, s.api, http.MethodPost, "/api/v1/statistics?scope=all", tester.Token, nil).Code)

	env = call(t, s.api, http.MethodGet, "/api/v1/statistics/1", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.Equal(t, resp.CodeNotFound, call(t, s.api, http.MethodGet, "/api/v1/statistics/404", client.Token, nil).Code)

	env = call(t, s.api, http.MethodGet, "/api/v1/statistics/month/6", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var month []domain.Statistics
	require.NoError(t, json.Unmarshal(env.Data, &month))
	require.Len(t, month, 1)

	env = call(t, s.api, http.MethodGet, "/api/v1/statistics/year/2020", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.JSONEq(t, `[]`, string(env.Data))

	require.Equal(t, resp.CodeBadRequest, call(t, s.api, http.MethodGet, "/api/v1/statistics/month/13", client.Token, nil).Code)
	require.Equal(t, resp.CodeBadRequest, call(t, s.api, http.MethodGet, "/api/v1/statistics/year/1899", client.Token, nil).Code)
}

func TestAdminEngine(t *testing.T) {
	s := newStack(t)
	manager := signup(t, s, "m@example.com", "")
	client := signup(t, s, "c@example.com", "Client")
	require.Equal(t, domain.RoleManager, manager.User.Role)

	require.Equal(t, resp.CodeUnauthorized, call(t, s.admin, http.MethodGet, "/admin/v1/users", "", nil).Code)
	require.Equal(t, resp.CodeForbidden, call(t, s.admin, http.MethodGet, "/admin/v1/users", client.Token, nil).Code)

	env := call(t, s.admin, http.MethodGet, "/admin/v1/users/role/client", manager.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	require.Equal(t, client.User.ID, users[0].ID)

	require.Equal(t, resp.CodeNotFound, call(t, s.admin, http.MethodGet, "/admin/v1/users/role/tester", manager.Token, nil).Code)
	require.Equal(t, resp.CodeBadRequest, call(t, s.admin, http.MethodGet, "/admin/v1/users/role/admin", manager.Token, nil).Code)

	require.Equal(t, resp.CodeOK, call(t, s.admin, http.MethodPost, "/admin/v1/statistics", manager.Token, nil).Code)
	env = call(t, s.admin, http.MethodGet, "/admin/v1/statistics?limit=5", manager.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var page resp.Page[domain.Statistics]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.EqualValues(t, 1, page.Total)

	env = call(t, s.admin, http.MethodGet, "/admin/v1/devices/5", manager.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.Equal(t, resp.CodeNotFound, call(t, s.admin, http.MethodGet, "/admin/v1/devices/6", manager.Token, nil).Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newStack(t)
	client := signup(t, s, "c@example.com", "Client")

	require.Equal(t, resp.CodeUnauthorized, call(t, s.api, http.MethodGet, "/api/v1/fountains", "", nil).Code)

	env := call(t, s.api, http.MethodGet, "/api/v1/fountains", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	var fountains []domain.Fountain
	require.NoError(t, json.Unmarshal(env.Data, &fountains))
	require.Len(t, fountains, 2)

	env = call(t, s.api, http.MethodGet, "/api/v1/fountains/search?q=PARK", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	require.NoError(t, json.Unmarshal(env.Data, &fountains))
	require.Len(t, fountains, 1)
	require.EqualValues(t, 2, fountains[0].ID)

	env = call(t, s.api, http.MethodGet, "/api/v1/fountains/search?q=desert", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.JSONEq(t, `[]`, string(env.Data))
	require.Equal(t, resp.CodeBadRequest, call(t, s.api, http.MethodGet, "/api/v1/fountains/search", client.Token, nil).Code)

	env = call(t, s.api, http.MethodGet, "/api/v1/fountains/1", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var f domain.Fountain
	require.NoError(t, json.Unmarshal(env.Data, &f))
	require.Equal(t, "plaza", f.Description)
	require.Equal(t, resp.CodeNotFound, call(t, s.api, http.MethodGet, "/api/v1/fountains/99", client.Token, nil).Code)

	env = call(t, s.api, http.MethodGet, "/api/v1/analyses", client.Token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	var analyses []domain.WaterAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &analyses))
	require.Len(t, analyses, 2)

	require.Equal(t, resp.CodeOK, call(t, s.api, http.MethodGet, "/api/v1/analyses/11", client.Token, nil).Code)
	require.Equal(t, resp.CodeNotFound, call(t, s.api, http.MethodGet, "/api/v1/analyses/12", client.Token, nil).Code)
	require.Equal(t, resp.CodeBadRequest, call(t, s.api, http.MethodGet, "/api/v1/analyses/x", client.Token, nil).Code)

	s.src.SetErr(domain.ErrSourceUnavailable)
	require.Equal(t, resp.CodeUnavailable, call(t, s.api, http.MethodGet, "/api/v1/analyses", client.Token, nil).Code)
}
