// Package compute implements the three compute workers. Each worker serves
// exactly one request kind, answering from the engine's aggregate store and
// replying to the original caller on the request's reply channel.
package compute

import (
	"context"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// TemperatureSource answers temperature lookups.
type TemperatureSource interface {
	Temperature(station string) domain.TemperatureSummary
}

// PrecipitationSource answers precipitation lookups.
type PrecipitationSource interface {
	Precipitation(station string, year int) domain.PrecipitationSummary
}

// StationSource answers station lookups.
type StationSource interface {
	Station(station string) domain.StationSummary
}

// TemperatureReceiver serves GetTemperature requests.
type TemperatureReceiver struct {
	source TemperatureSource
	logger log.Logger
}

// NewTemperatureReceiver creates the temperature worker receiver.
func NewTemperatureReceiver(source TemperatureSource, logger log.Logger) *TemperatureReceiver {
	return &TemperatureReceiver{source: source, logger: logger}
}

// Receive answers one GetTemperature request.
func (r *TemperatureReceiver) Receive(ctx context.Context, msg interface{}) {
	req, ok := msg.(domain.GetTemperature)
	if !ok {
		r.logger.Warn("temperature worker received unexpected message", log.Any("message", msg))
		return
	}
	reply(r.logger, req.Reply, r.source.Temperature(req.Station))
}

// PrecipitationReceiver serves GetPrecipitation requests.
type PrecipitationReceiver struct {
	source PrecipitationSource
	logger log.Logger
}

// NewPrecipitationReceiver creates the precipitation worker receiver.
func NewPrecipitationReceiver(source PrecipitationSource, logger log.Logger) *PrecipitationReceiver {
	return &PrecipitationReceiver{source: source, logger: logger}
}

// Receive answers one GetPrecipitation request.
func (r *PrecipitationReceiver) Receive(ctx context.Context, msg interface{}) {
	req, ok := msg.(domain.GetPrecipitation)
	if !ok {
		r.logger.Warn("precipitation worker received unexpected message", log.Any("message", msg))
		return
	}
	reply(r.logger, req.Reply, r.source.Precipitation(req.Station, req.Year))
}

// StationReceiver serves GetWeatherStation requests.
type StationReceiver struct {
	source StationSource
	logger log.Logger
}

// NewStationReceiver creates the station worker receiver.
func NewStationReceiver(source StationSource, logger log.Logger) *StationReceiver {
	return &StationReceiver{source: source, logger: logger}
}

// Receive answers one GetWeatherStation request.
func (r *StationReceiver) Receive(ctx context.Context, msg interface{}) {
	req, ok := msg.(domain.GetWeatherStation)
	if !ok {
		r.logger.Warn("station worker received unexpected message", log.Any("message", msg))
		return
	}
	reply(r.logger, req.Reply, r.source.Station(req.Station))
}

// reply delivers a result without ever blocking the worker: callers provide
// a buffered reply channel; one that is gone or full forfeits its answer.
func reply[T any](logger log.Logger, ch chan<- T, result T) {
	if ch == nil {
		logger.Warn("request carried no reply channel")
		return
	}
	select {
	case ch <- result:
	default:
		logger.Warn("reply dropped, caller not receiving")
	}
}
