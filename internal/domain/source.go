package domain

import "context"

// AnalysisSource is the upstream service that owns fountains, devices and analyses.
//
// Implementations translate transport failures into ErrSourceUnavailable,
// non-2xx replies into *SourceError, and 404 into ErrResourceNotFound.
type AnalysisSource interface {
	GetFountain(ctx context.Context, id int64) (*Fountain, error)
	GetWaterAnalysis(ctx context.Context, id int64) (*WaterAnalysis, error)
	ListWaterAnalyses(ctx context.Context) ([]WaterAnalysis, error)
}

// FountainSource exposes the upstream fountain catalogue.
type FountainSource interface {
	ListFountains(ctx context.Context) ([]Fountain, error)
	SearchFountains(ctx context.Context, q string) ([]Fountain, error)
}

// DeviceSource exposes the upstream device registry.
type DeviceSource interface {
	ListDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, id int64) (*Device, error)
}
