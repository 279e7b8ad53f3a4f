package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnReedLOL/killrweather/internal/domain"
)

func TestStore_TemperatureAggregate(t *testing.T) {
	s := NewStore()
	s.AddTemperature("725030:14732", 5.0)
	s.AddTemperature("725030:14732", -3.0)
	s.AddTemperature("725030:14732", 10.0)

	got := s.Temperature("725030:14732")
	require.True(t, got.Found)
	assert.Equal(t, int64(3), got.Count)
	assert.Equal(t, -3.0, got.Min)
	assert.Equal(t, 10.0, got.Max)
	assert.InDelta(t, 4.0, got.Mean, 1e-9)
}

func TestStore_TemperatureUnknownStation(t *testing.T) {
	s := NewStore()
	got := s.Temperature("nowhere")
	assert.False(t, got.Found)
	assert.Equal(t, "nowhere", got.Station)
}

func TestStore_PrecipitationPerYear(t *testing.T) {
	s := NewStore()
	s.AddPrecipitation("725030:14732", 2008, 0.3)
	s.AddPrecipitation("725030:14732", 2008, 0.7)
	s.AddPrecipitation("725030:14732", 2009, 1.5)

	got := s.Precipitation("725030:14732", 2008)
	require.True(t, got.Found)
	assert.InDelta(t, 1.0, got.Total, 1e-9)

	next := s.Precipitation("725030:14732", 2009)
	require.True(t, next.Found)
	assert.InDelta(t, 1.5, next.Total, 1e-9)

	missing := s.Precipitation("725030:14732", 2010)
	assert.False(t, missing.Found)
}

func TestStore_StationSummary(t *testing.T) {
	s := NewStore()
	s.AddObservation("725030:14732", 2008)
	s.AddObservation("725030:14732", 2006)
	s.AddObservation("725030:14732", 2010)

	got := s.Station("725030:14732")
	require.True(t, got.Found)
	assert.Equal(t, int64(3), got.Observations)
	assert.Equal(t, 2006, got.FirstYear)
	assert.Equal(t, 2010, got.LastYear)
}

func TestStore_StationsAreIndependent(t *testing.T) {
	s := NewStore()
	s.AddTemperature("a", 1.0)
	s.AddTemperature("b", 100.0)

	assert.Equal(t, 1.0, s.Temperature("a").Max)
	assert.Equal(t, 100.0, s.Temperature("b").Max)
}

func TestPipelines_FoldOneObservation(t *testing.T) {
	s := NewStore()
	obs, err := domain.ParseRecord("725030:14732,2008,01,01,00,5.0,-3.3,1020.4,270,4.6,2,0.4,0.0")
	require.NoError(t, err)

	for _, p := range []Pipeline{
		NewTemperaturePipeline(s),
		NewPrecipitationPipeline(s),
		NewStationPipeline(s),
	} {
		p.Apply(obs)
	}

	assert.True(t, s.Temperature("725030:14732").Found)
	precip := s.Precipitation("725030:14732", 2008)
	require.True(t, precip.Found)
	assert.InDelta(t, 0.4, precip.Total, 1e-9)
	assert.Equal(t, int64(1), s.Station("725030:14732").Observations)
}
