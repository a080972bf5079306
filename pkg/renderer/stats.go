package renderer

import "time"

// TraceStats counts the work done while rendering some pixels
type TraceStats struct {
	Pixels        int // Output pixels written
	PrimaryRays   int // Camera rays
	SecondaryRays int // Reflection and refraction rays
	ShadowRays    int // Occlusion tests toward lights
}

// Add accumulates other into the stats
func (s *TraceStats) Add(other TraceStats) {
	s.Pixels += other.Pixels
	s.PrimaryRays += other.PrimaryRays
	s.SecondaryRays += other.SecondaryRays
	s.ShadowRays += other.ShadowRays
}

// TotalRays returns the number of rays of every kind
func (s TraceStats) TotalRays() int {
	return s.PrimaryRays + s.SecondaryRays + s.ShadowRays
}

// RenderStats contains statistics about one call to Render
type RenderStats struct {
	TraceStats
	Width, Height int
	Tiles         int
	Workers       int
	Duration      time.Duration
}

// RaysPerSecond returns the ray throughput of the render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalRays()) / s.Duration.Seconds()
}
