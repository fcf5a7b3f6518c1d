// Package telemetry writes per-frame light engine statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"chosenoffset.com/raylight/internal/render/lighting"
)

// FrameRecord is one CSV row.
type FrameRecord struct {
	Frame          int  `csv:"frame"`
	LightsUpdated  int  `csv:"lights_updated"`
	LightsRebuilt  int  `csv:"lights_rebuilt"`
	LightsCulled   int  `csv:"lights_culled"`
	LightsDrawn    int  `csv:"lights_drawn"`
	RaysCast       int  `csv:"rays_cast"`
	ShadowFixtures int  `csv:"shadow_fixtures"`
	Roofs          int  `csv:"roofs"`
	Vertices       int  `csv:"vertices"`
	Flushes        int  `csv:"flushes"`
	Blurred        bool `csv:"blurred"`
}

// NewFrameRecord copies the manager's counters for frame.
func NewFrameRecord(frame int, s lighting.FrameStats) FrameRecord {
	return FrameRecord{
		Frame:          frame,
		LightsUpdated:  s.LightsUpdated,
		LightsRebuilt:  s.LightsRebuilt,
		LightsCulled:   s.LightsCulled,
		LightsDrawn:    s.LightsDrawn,
		RaysCast:       s.RaysCast,
		ShadowFixtures: s.ShadowFixtures,
		Roofs:          s.Roofs,
		Vertices:       s.Vertices,
		Flushes:        s.Flushes,
		Blurred:        s.Blurred,
	}
}

// StatsWriter appends FrameRecords to a CSV stream every interval frames.
// A nil *StatsWriter accepts records and drops them.
type StatsWriter struct {
	w             io.Writer
	closer        io.Closer
	interval      int
	headerWritten bool
}

// NewStatsWriter writes to w. An interval below 1 records every frame.
func NewStatsWriter(w io.Writer, interval int) *StatsWriter {
	return &StatsWriter{w: w, interval: max(interval, 1)}
}

// CreateStatsFile opens path for writing, creating parent directories.
// An empty path disables output and returns nil.
func CreateStatsFile(path string, interval int) (*StatsWriter, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating stats directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating stats file: %w", err)
	}
	sw := NewStatsWriter(f, interval)
	sw.closer = f
	return sw, nil
}

// Record writes the stats of frame if it falls on the interval.
func (sw *StatsWriter) Record(frame int, s lighting.FrameStats) error {
	if sw == nil || frame%sw.interval != 0 {
		return nil
	}

	records := []FrameRecord{NewFrameRecord(frame, s)}
	if !sw.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, sw.w); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
		sw.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, sw.w); err != nil {
		return fmt.Errorf("writing frame stats: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the writer owns one.
func (sw *StatsWriter) Close() error {
	if sw == nil || sw.closer == nil {
		return nil
	}
	return sw.closer.Close()
}
