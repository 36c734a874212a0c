package domain

import (
	"fmt"
	"time"
)

// Timeframe is the requested span of a historical price series.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1d"
	Timeframe3D  Timeframe = "3d"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
	Timeframe1Y  Timeframe = "1y"
)

// Timeframes lists all supported timeframes, shortest first.
var Timeframes = []Timeframe{Timeframe1D, Timeframe3D, Timeframe7D, Timeframe30D, Timeframe1Y}

// ParseTimeframe converts user input like "7d" into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if s == string(tf) {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe: %q", s)
}

// Days returns the number of days the timeframe spans.
func (t Timeframe) Days() int {
	switch t {
	case Timeframe1D:
		return 1
	case Timeframe3D:
		return 3
	case Timeframe30D:
		return 30
	case Timeframe1Y:
		return 365
	default:
		return 7
	}
}

// Hourly reports whether the series should be sampled hourly. Longer
// windows use the provider's coarser default granularity.
func (t Timeframe) Hourly() bool {
	return t == Timeframe1D || t == Timeframe3D
}

// Window returns the timeframe as a duration.
func (t Timeframe) Window() time.Duration {
	return time.Duration(t.Days()) * 24 * time.Hour
}

func (t Timeframe) String() string { return string(t) }
