package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/headscroll/internal/session"
)

type ExportSample struct {
	Time        float64 `json:"time"`
	Detected    bool    `json:"detected"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
	Baseline    float64 `json:"baseline"`
	Decision    string  `json:"decision"`
	Offset      float64 `json:"offset"`
	Calibration bool    `json:"calibration,omitempty"`
}

type ExportData struct {
	RunMetadata
	Samples []ExportSample `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, records []session.Record) error {
	data := ExportData{
		RunMetadata: *meta,
		Samples:     make([]ExportSample, len(records)),
	}

	for i, r := range records {
		data.Samples[i] = ExportSample{
			Time:        r.Time.Seconds(),
			Detected:    r.Detected,
			Baseline:    r.Baseline,
			Decision:    r.Decision.Direction.String(),
			Offset:      r.Offset,
			Calibration: r.Calibration,
		}
		if r.Detected {
			data.Samples[i].X = r.Point.X
			data.Samples[i].Y = r.Point.Y
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
