package engine

import (
	"sync"

	"github.com/JohnReedLOL/killrweather/internal/domain"
)

type tempAgg struct {
	count int64
	sum   float64
	min   float64
	max   float64
}

type stationAgg struct {
	observations int64
	firstYear    int
	lastYear     int
}

// Store holds the per-station aggregates the pipelines produce. Pipelines
// write from the engine's consume goroutine while compute workers read
// concurrently, so access is guarded.
type Store struct {
	mu       sync.RWMutex
	temps    map[string]*tempAgg
	precip   map[string]map[int]float64
	stations map[string]*stationAgg
}

// NewStore creates an empty aggregate store.
func NewStore() *Store {
	return &Store{
		temps:    make(map[string]*tempAgg),
		precip:   make(map[string]map[int]float64),
		stations: make(map[string]*stationAgg),
	}
}

// AddTemperature folds one temperature observation into the station's aggregate.
func (s *Store) AddTemperature(station string, celsius float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.temps[station]
	if !ok {
		agg = &tempAgg{min: celsius, max: celsius}
		s.temps[station] = agg
	}
	agg.count++
	agg.sum += celsius
	if celsius < agg.min {
		agg.min = celsius
	}
	if celsius > agg.max {
		agg.max = celsius
	}
}

// AddPrecipitation adds one-hour precipitation to the station's yearly total.
func (s *Store) AddPrecipitation(station string, year int, oneHour float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	years, ok := s.precip[station]
	if !ok {
		years = make(map[int]float64)
		s.precip[station] = years
	}
	years[year] += oneHour
}

// AddObservation records that the station produced one observation in year.
func (s *Store) AddObservation(station string, year int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.stations[station]
	if !ok {
		agg = &stationAgg{firstYear: year, lastYear: year}
		s.stations[station] = agg
	}
	agg.observations++
	if year < agg.firstYear {
		agg.firstYear = year
	}
	if year > agg.lastYear {
		agg.lastYear = year
	}
}

// Temperature returns the temperature aggregate of a station.
func (s *Store) Temperature(station string) domain.TemperatureSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.temps[station]
	if !ok {
		return domain.TemperatureSummary{Station: station}
	}
	return domain.TemperatureSummary{
		Station: station,
		Found:   true,
		Count:   agg.count,
		Min:     agg.min,
		Max:     agg.max,
		Mean:    agg.sum / float64(agg.count),
	}
}

// Precipitation returns the yearly precipitation total of a station.
func (s *Store) Precipitation(station string, year int) domain.PrecipitationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years, ok := s.precip[station]
	if !ok {
		return domain.PrecipitationSummary{Station: station, Year: year}
	}
	total, ok := years[year]
	if !ok {
		return domain.PrecipitationSummary{Station: station, Year: year}
	}
	return domain.PrecipitationSummary{
		Station: station,
		Year:    year,
		Found:   true,
		Total:   total,
	}
}

// Station returns the ingest summary of a station.
func (s *Store) Station(station string) domain.StationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.stations[station]
	if !ok {
		return domain.StationSummary{Station: station}
	}
	return domain.StationSummary{
		Station:      station,
		Found:        true,
		Observations: agg.observations,
		FirstYear:    agg.firstYear,
		LastYear:     agg.lastYear,
	}
}
