// Package upstream talks to the water-analysis service that owns fountains,
// devices and radon analyses.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fountain-monitor/internal/domain"
)

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	MaxIdleConns int
}

// Client implements the domain source interfaces over HTTP.
// Concurrent lookups of the same id share one in-flight request.
type Client struct {
	base *url.URL
	hc   *http.Client
	log  *zap.Logger
	sf   singleflight.Group
}

var (
	_ domain.AnalysisSource = (*Client)(nil)
	_ domain.FountainSource = (*Client)(nil)
	_ domain.DeviceSource   = (*Client)(nil)
)

func New(o Options, l *zap.Logger) (*Client, error) {
	base, err := url.Parse(o.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q: missing scheme or host", o.BaseURL)
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if o.MaxIdleConns > 0 {
		tr.MaxIdleConns = o.MaxIdleConns
		tr.MaxIdleConnsPerHost = o.MaxIdleConns
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: o.Timeout, Transport: tr},
		log:  l,
	}, nil
}

func (c *Client) GetFountain(ctx context.Context, id int64) (*domain.Fountain, error) {
	v, err := c.shared(ctx, "fountain:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		var dto *fountainDTO
		if err := c.getJSON(ctx, "get_fountain", true, nil, &dto, "fountains", strconv.FormatInt(id, 10)); err != nil {
			return nil, err
		}
		if dto == nil {
			return nil, fmt.Errorf("%w: fountain %d", domain.ErrResourceNotFound, id)
		}
		return dto.toDomain(), nil
	})
	if err != nil {
		return nil, err
	}
	f := v.(domain.Fountain)
	return &f, nil
}

func (c *Client) ListFountains(ctx context.Context) ([]domain.Fountain, error) {
	return c.listFountains(ctx, "list_fountains", nil, "fountains")
}

// SearchFountains asks the upstream for fountains matching q.
func (c *Client) SearchFountains(ctx context.Context, q string) ([]domain.Fountain, error) {
	return c.listFountains(ctx, "search_fountains", url.Values{"q": {q}}, "fountains", "search")
}

func (c *Client) listFountains(ctx context.Context, op string, query url.Values, elem ...string) ([]domain.Fountain, error) {
	var dtos []fountainDTO
	if err := c.getJSON(ctx, op, false, query, &dtos, elem...); err != nil {
		return nil, err
	}
	out := make([]domain.Fountain, 0, len(dtos))
	for i := range dtos {
		out = append(out, dtos[i].toDomain())
	}
	return out, nil
}

func (c *Client) GetWaterAnalysis(ctx context.Context, id int64) (*domain.WaterAnalysis, error) {
	v, err := c.shared(ctx, "analysis:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		var dto *analysisDTO
		if err := c.getJSON(ctx, "get_water_analysis", true, nil, &dto, "wateranalysis", strconv.FormatInt(id, 10)); err != nil {
			return nil, err
		}
		if dto == nil {
			return nil, fmt.Errorf("%w: water analysis %d", domain.ErrResourceNotFound, id)
		}
		return dto.toDomain(), nil
	})
	if err != nil {
		return nil, err
	}
	a := v.(domain.WaterAnalysis)
	return &a, nil
}

// shared runs fn once per key across concurrent callers. The request runs on a
// context detached from any single caller, bounded by the client timeout, so
// one caller giving up does not fail the others; each caller still stops
// waiting when its own ctx ends.
func (c *Client) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.sf.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, key, ctx.Err())
	}
}

func (c *Client) ListWaterAnalyses(ctx context.Context) ([]domain.WaterAnalysis, error) {
	var dtos *[]analysisDTO
	if err := c.getJSON(ctx, "list_water_analyses", false, nil, &dtos, "wateranalysis"); err != nil {
		return nil, err
	}
	if dtos == nil {
		return nil, fmt.Errorf("%w: list water analyses returned null", domain.ErrSourceUnavailable)
	}
	out := make([]domain.WaterAnalysis, 0, len(*dtos))
	for i := range *dtos {
		out = append(out, (*dtos)[i].toDomain())
	}
	return out, nil
}

func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	var dtos []deviceDTO
	if err := c.getJSON(ctx, "list_devices", false, nil, &dtos, "devices"); err != nil {
		return nil, err
	}
	out := make([]domain.Device, 0, len(dtos))
	for i := range dtos {
		out = append(out, dtos[i].toDomain())
	}
	return out, nil
}

func (c *Client) GetDevice(ctx context.Context, id int64) (*domain.Device, error) {
	var dto *deviceDTO
	if err := c.getJSON(ctx, "get_device", true, nil, &dto, "devices", strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, fmt.Errorf("%w: device %d", domain.ErrResourceNotFound, id)
	}
	d := dto.toDomain()
	return &d, nil
}

// getJSON GETs base/elem...?query and decodes the body into out. A 404 maps to
// ErrResourceNotFound when byID is set.
func (c *Client) getJSON(ctx context.Context, op string, byID bool, query url.Values, out any, elem ...string) (err error) {
	start := time.Now()
	defer func() {
		upstreamLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		upstreamReqTotal.WithLabelValues(op, outcome(err)).Inc()
	}()

	u := c.base.JoinPath(elem...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: build request: %v", domain.ErrSourceUnavailable, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("upstream unreachable", zap.String("op", op), zap.String("url", u.String()), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound && byID:
		return fmt.Errorf("%w: %s %s", domain.ErrResourceNotFound, op, elem[len(elem)-1])
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Warn("upstream error status", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return &domain.SourceError{StatusCode: resp.StatusCode, Op: op}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// empty body reads as null
			return nil
		}
		return fmt.Errorf("%w: %s: decode: %v", domain.ErrSourceError, op, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrResourceNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "unavailable"
	}
	return "error"
}
