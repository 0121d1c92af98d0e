package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Gauges at window end
	Population  int `csv:"population"`
	ParadeCount int `csv:"parades"`
	PileCount   int `csv:"piles"`

	// Events during the window
	Transitions     int `csv:"transitions"`
	ZoomieContagion int `csv:"zoomie_contagion"`
	YawnContagion   int `csv:"yawn_contagion"`
	CascadeWakes    int `csv:"cascade_wakes"`
	ParadesFormed   int `csv:"parades_formed"`
	PilesFormed     int `csv:"piles_formed"`
	RejectedSpawns  int `csv:"rejected_spawns"`
	Sanitized       int `csv:"sanitized"`
	GiftsDelivered  int `csv:"gifts_delivered"`

	// Speed distribution sampled at window end, px/s
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Neighbor-count distribution sampled at window end
	NeighborsMean float64 `csv:"neighbors_mean"`
	NeighborsP50  float64 `csv:"neighbors_p50"`
	NeighborsP90  float64 `csv:"neighbors_p90"`
}

// ComputeDistStats calculates mean, standard deviation and the 50th/90th
// quantiles of a sample set. Returns zeros for an empty set.
func ComputeDistStats(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p50, p90
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"parades", s.ParadeCount,
		"piles", s.PileCount,
		"transitions", s.Transitions,
		"zoomie_contagion", s.ZoomieContagion,
		"yawn_contagion", s.YawnContagion,
		"cascade_wakes", s.CascadeWakes,
		"parades_formed", s.ParadesFormed,
		"piles_formed", s.PilesFormed,
		"rejected_spawns", s.RejectedSpawns,
		"sanitized", s.Sanitized,
		"gifts_delivered", s.GiftsDelivered,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"neighbors_mean", s.NeighborsMean,
		"neighbors_p50", s.NeighborsP50,
		"neighbors_p90", s.NeighborsP90,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("parades", s.ParadeCount),
		slog.Int("piles", s.PileCount),
		slog.Int("transitions", s.Transitions),
		slog.Int("zoomie_contagion", s.ZoomieContagion),
		slog.Int("yawn_contagion", s.YawnContagion),
		slog.Int("cascade_wakes", s.CascadeWakes),
		slog.Int("parades_formed", s.ParadesFormed),
		slog.Int("piles_formed", s.PilesFormed),
		slog.Int("rejected_spawns", s.RejectedSpawns),
		slog.Int("sanitized", s.Sanitized),
		slog.Int("gifts_delivered", s.GiftsDelivered),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("neighbors_mean", s.NeighborsMean),
		slog.Float64("neighbors_p50", s.NeighborsP50),
		slog.Float64("neighbors_p90", s.NeighborsP90),
	)
}
