package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fountain-monitor/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api/", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestGetFountain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fountains/3", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":3,"description":"Praça","susceptibilityIndex":2,"isDrinkable":true,"latitude":41.1,"longitude":-8.6}`))
	})

	f, err := c.GetFountain(context.Background(), 3)
	require.NoError(t, err)
	require.EqualValues(t, 3, f.ID)
	require.Equal(t, "Praça", f.Description)
	require.Equal(t, domain.SusceptibilityHigh, f.SusceptibilityIndex)
	require.True(t, f.IsDrinkable)
}

func TestGetWaterAnalysisParsesDates(t *testing.T) {
	for _, date := range []string{`"2026-03-14"`, `"2026-03-14T00:00:00"`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":9,"radonConcentration":12.5,"fountainId":3,"deviceId":1,"date":` + date + `}`))
		})
		a, err := c.GetWaterAnalysis(context.Background(), 9)
		require.NoError(t, err)
		require.Equal(t, 12.5, a.RadonConcentration)
		require.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), a.Date)
	}
}

func TestErrorTranslation(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, ``, domain.ErrResourceNotFound},
		{"null body", http.StatusOK, `null`, domain.ErrResourceNotFound},
		{"server error", http.StatusInternalServerError, ``, domain.ErrSourceError},
		{"malformed", http.StatusOK, `{"id":`, domain.ErrSourceError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.GetFountain(context.Background(), 1)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSourceErrorCarriesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.ListWaterAnalyses(context.Background())
	var se *domain.SourceError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestListWaterAnalyses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/wateranalysis", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"radonConcentration":10,"date":"2026-01-02"},{"id":2,"radonConcentration":20,"date":"2026-01-03"}]`))
	})
	all, err := c.ListWaterAnalyses(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 20.0, all[1].RadonConcentration)
}

func TestListWaterAnalysesNullIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	_, err := c.ListWaterAnalyses(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	_, err = c.ListWaterAnalyses(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)
	_, err = c.GetWaterAnalysis(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestDevices(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/devices":
			_, _ = w.Write([]byte(`[{"id":1,"model":"RD200","serialNumber":"A1","expirationDate":"2027-01-01"}]`))
		case "/api/devices/1":
			_, _ = w.Write([]byte(`{"id":1,"model":"RD200","serialNumber":"A1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ds, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.NotNil(t, ds[0].ExpirationDate)

	d, err := c.GetDevice(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, d.ExpirationDate)

	_, err = c.GetDevice(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
	require.EqualValues(t, 3, hits.Load())
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost"}, zap.NewNop())
	require.Error(t, err)
}

func TestFountainCatalogue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fountains":
			_, _ = w.Write([]byte(`[{"id":1,"description":"Praça"},{"id":2,"description":"Parque","susceptibilityIndex":"Low"}]`))
		case "/api/fountains/search":
			assert.Equal(t, "par que", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`[{"id":2,"description":"Parque"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	all, err := c.ListFountains(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, domain.SusceptibilityLow, all[1].SusceptibilityIndex)

	found, err := c.SearchFountains(context.Background(), "par que")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.EqualValues(t, 2, found[0].ID)
}

func TestSharedLookupSurvivesCallerCancel(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"id":7,"description":"shared"}`))
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetFountain(ctxA, 7)
		errA <- err
	}()
	<-arrived

	type result struct {
		f   *domain.Fountain
		err error
	}
	resB := make(chan result, 1)
	go func() {
		f, err := c.GetFountain(context.Background(), 7)
		resB <- result{f, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, domain.ErrSourceUnavailable)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	require.Equal(t, "shared", b.f.Description)
	require.EqualValues(t, 1, hits.Load())
}
