// Package upstreamtest provides an in-memory analysis source for tests.
package upstreamtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fountain-monitor/internal/domain"
)

// Source is a programmable in-memory implementation of the domain source interfaces.
type Source struct {
	mu        sync.Mutex
	fountains map[int64]domain.Fountain
	analyses  []domain.WaterAnalysis
	devices   map[int64]domain.Device

	// Err, when set, is returned from every call.
	Err error
	// ListNil makes ListWaterAnalyses behave like an upstream that replied null.
	ListNil bool

	FountainCalls []int64
	AnalysisCalls []int64
	ListCalls     int
}

var (
	_ domain.AnalysisSource = (*Source)(nil)
	_ domain.FountainSource = (*Source)(nil)
	_ domain.DeviceSource   = (*Source)(nil)
)

func New() *Source {
	return &Source{
		fountains: make(map[int64]domain.Fountain),
		devices:   make(map[int64]domain.Device),
	}
}

func (s *Source) AddFountain(f domain.Fountain) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fountains[f.ID] = f
	return s
}

func (s *Source) AddAnalysis(a ...domain.WaterAnalysis) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses = append(s.analyses, a...)
	return s
}

func (s *Source) AddDevice(d domain.Device) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.ID] = d
	return s
}

func (s *Source) RemoveFountain(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fountains, id)
}

func (s *Source) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Calls returns the number of by-id lookups seen so far.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.FountainCalls) + len(s.AnalysisCalls)
}

func (s *Source) GetFountain(_ context.Context, id int64) (*domain.Fountain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FountainCalls = append(s.FountainCalls, id)
	if s.Err != nil {
		return nil, s.Err
	}
	f, ok := s.fountains[id]
	if !ok {
		return nil, fmt.Errorf("%w: fountain %d", domain.ErrResourceNotFound, id)
	}
	return &f, nil
}

func (s *Source) GetWaterAnalysis(_ context.Context, id int64) (*domain.WaterAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AnalysisCalls = append(s.AnalysisCalls, id)
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.analyses {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: water analysis %d", domain.ErrResourceNotFound, id)
}

func (s *Source) ListWaterAnalyses(context.Context) ([]domain.WaterAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.ListNil {
		return nil, fmt.Errorf("%w: list returned null", domain.ErrSourceUnavailable)
	}
	return append(make([]domain.WaterAnalysis, 0, len(s.analyses)), s.analyses...), nil
}

// ListFountains returns every fountain ordered by id.
func (s *Source) ListFountains(ctx context.Context) ([]domain.Fountain, error) {
	return s.SearchFountains(ctx, "")
}

// SearchFountains matches q case-insensitively against descriptions.
func (s *Source) SearchFountains(_ context.Context, q string) ([]domain.Fountain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	q = strings.ToLower(q)
	out := make([]domain.Fountain, 0, len(s.fountains))
	for _, f := range s.fountains {
		if strings.Contains(strings.ToLower(f.Description), q) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Source) ListDevices(context.Context) ([]domain.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out, nil
}

func (s *Source) GetDevice(_ context.Context, id int64) (*domain.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	d, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: device %d", domain.ErrResourceNotFound, id)
	}
	return &d, nil
}
