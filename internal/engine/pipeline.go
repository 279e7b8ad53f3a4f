package engine

import "github.com/JohnReedLOL/killrweather/internal/domain"

// Pipeline folds consumed observations into an aggregate. Pipelines are
// registered before the engine starts; registration after start is refused.
type Pipeline interface {
	Name() string
	Apply(obs domain.Observation)
}

// TemperaturePipeline maintains per-station temperature aggregates.
type TemperaturePipeline struct {
	store *Store
}

// NewTemperaturePipeline creates a temperature pipeline over the store.
func NewTemperaturePipeline(store *Store) *TemperaturePipeline {
	return &TemperaturePipeline{store: store}
}

// Name implements Pipeline.
func (*TemperaturePipeline) Name() string { return "temperature" }

// Apply implements Pipeline.
func (p *TemperaturePipeline) Apply(obs domain.Observation) {
	p.store.AddTemperature(obs.Station, obs.Temperature)
}

// PrecipitationPipeline maintains per-station yearly precipitation totals.
type PrecipitationPipeline struct {
	store *Store
}

// NewPrecipitationPipeline creates a precipitation pipeline over the store.
func NewPrecipitationPipeline(store *Store) *PrecipitationPipeline {
	return &PrecipitationPipeline{store: store}
}

// Name implements Pipeline.
func (*PrecipitationPipeline) Name() string { return "precipitation" }

// Apply implements Pipeline.
func (p *PrecipitationPipeline) Apply(obs domain.Observation) {
	p.store.AddPrecipitation(obs.Station, obs.Year, obs.OneHourPrecip)
}

// StationPipeline maintains per-station ingest summaries.
type StationPipeline struct {
	store *Store
}

// NewStationPipeline creates a station pipeline over the store.
func NewStationPipeline(store *Store) *StationPipeline {
	return &StationPipeline{store: store}
}

// Name implements Pipeline.
func (*StationPipeline) Name() string { return "station" }

// Apply implements Pipeline.
func (p *StationPipeline) Apply(obs domain.Observation) {
	p.store.AddObservation(obs.Station, obs.Year)
}
