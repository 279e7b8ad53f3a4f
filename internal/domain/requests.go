// Package domain holds the weather-node domain types: raw observation
// records, the routable request set, and the sentinel errors shared across
// the node.
package domain

// Kind identifies one routable request kind. The set is closed: each kind
// is served by exactly one compute worker.
type Kind string

const (
	KindTemperature   Kind = "temperature"
	KindPrecipitation Kind = "precipitation"
	KindStation       Kind = "station"
)

// Request is a typed query routed to exactly one compute worker. Every
// request carries its own reply channel so the worker answers the original
// caller directly; the router never produces a response itself.
type Request interface {
	// RequestKind returns the routing kind of this request.
	RequestKind() Kind
}

// GetTemperature asks for the temperature aggregate of one station.
type GetTemperature struct {
	Station string
	Reply   chan<- TemperatureSummary
}

// RequestKind implements Request.
func (GetTemperature) RequestKind() Kind { return KindTemperature }

// GetPrecipitation asks for the yearly precipitation total of one station.
type GetPrecipitation struct {
	Station string
	Year    int
	Reply   chan<- PrecipitationSummary
}

// RequestKind implements Request.
func (GetPrecipitation) RequestKind() Kind { return KindPrecipitation }

// GetWeatherStation asks for the ingest summary of one station.
type GetWeatherStation struct {
	Station string
	Reply   chan<- StationSummary
}

// RequestKind implements Request.
func (GetWeatherStation) RequestKind() Kind { return KindStation }

// TemperatureSummary aggregates the temperature observations of a station.
type TemperatureSummary struct {
	Station string
	Found   bool
	Count   int64
	Min     float64
	Max     float64
	Mean    float64
}

// PrecipitationSummary is the cumulative one-hour precipitation of a station
// over one year.
type PrecipitationSummary struct {
	Station string
	Year    int
	Found   bool
	Total   float64
}

// StationSummary reports what the engine has seen for a station.
type StationSummary struct {
	Station      string
	Found        bool
	Observations int64
	FirstYear    int
	LastYear     int
}

// RawRecord is one line-delimited observation on its way to the message
// queue, with the topic and consumer-group routing metadata attached by the
// feeder.
type RawRecord struct {
	Topic   string
	Group   string
	Payload string
}
