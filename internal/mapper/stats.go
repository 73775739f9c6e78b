package mapper

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ScanStats summarises the distance distribution of one scan record.
type ScanStats struct {
	Count        int     `json:"count"`
	MinDistance  float64 `json:"min_distance"`
	MaxDistance  float64 `json:"max_distance"`
	MeanDistance float64 `json:"mean_distance"`
	StdDev       float64 `json:"std_dev"`
}

// ComputeScanStats returns distance statistics for a scan record. An empty
// record yields the zero value.
func ComputeScanStats(rec ScanRecord) ScanStats {
	if len(rec.Points) == 0 {
		return ScanStats{}
	}

	distances := make([]float64, len(rec.Points))
	for i, p := range rec.Points {
		distances[i] = p.Distance
	}

	s := ScanStats{
		Count:        len(distances),
		MinDistance:  floats.Min(distances),
		MaxDistance:  floats.Max(distances),
		MeanDistance: stat.Mean(distances, nil),
	}
	if len(distances) > 1 {
		s.StdDev = stat.StdDev(distances, nil)
	}
	return s
}
