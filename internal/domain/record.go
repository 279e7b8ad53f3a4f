package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// recordFields is the number of comma-separated fields in a raw observation
// line: wsid, year, month, day, hour, temperature, dewpoint, pressure,
// wind direction, wind speed, sky condition, one-hour precip, six-hour precip.
const recordFields = 13

// Observation is one parsed raw weather record.
type Observation struct {
	Station       string
	Year          int
	Month         int
	Day           int
	Hour          int
	Temperature   float64
	Dewpoint      float64
	Pressure      float64
	WindDirection int
	WindSpeed     float64
	SkyCondition  int
	OneHourPrecip float64
	SixHourPrecip float64
}

// ParseRecord parses a comma-separated raw observation line.
func ParseRecord(line string) (Observation, error) {
	var obs Observation

	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != recordFields {
		return obs, fmt.Errorf("record has %d fields, want %d", len(parts), recordFields)
	}

	obs.Station = strings.TrimSpace(parts[0])
	if obs.Station == "" {
		return obs, fmt.Errorf("record has empty station id")
	}

	var err error
	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"year", parts[1], &obs.Year},
		{"month", parts[2], &obs.Month},
		{"day", parts[3], &obs.Day},
		{"hour", parts[4], &obs.Hour},
		{"wind_direction", parts[8], &obs.WindDirection},
		{"sky_condition", parts[10], &obs.SkyCondition},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(strings.TrimSpace(f.raw)); err != nil {
			return obs, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	floats := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"temperature", parts[5], &obs.Temperature},
		{"dewpoint", parts[6], &obs.Dewpoint},
		{"pressure", parts[7], &obs.Pressure},
		{"wind_speed", parts[9], &obs.WindSpeed},
		{"one_hour_precip", parts[11], &obs.OneHourPrecip},
		{"six_hour_precip", parts[12], &obs.SixHourPrecip},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(strings.TrimSpace(f.raw), 64); err != nil {
			return obs, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	return obs, nil
}
