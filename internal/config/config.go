// Package config defines service configuration and loading.
//
// Conventions:
// - Defaults live in New; Load layers file and environment on top.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabasePath names the SQLite file for write-behind persistence.
	// Empty disables durable storage entirely.
	DatabasePath string `koanf:"database_path"`

	// VisitPoints, ViolationPoints and WarningPoints weight the raw
	// weekly counts. All positive: reported violations and warnings
	// reward the observer's diligence.
	VisitPoints     int `koanf:"visit_points"`
	ViolationPoints int `koanf:"violation_points"`
	WarningPoints   int `koanf:"warning_points"`

	// GradePoints overrides base points per evaluation grade.
	GradePoints map[string]int `koanf:"grade_points"`

	// ImprovementThreshold is the violation count above which an observer
	// is flagged for an improvement plan.
	ImprovementThreshold int `koanf:"improvement_threshold"`

	// PersistQueueSize bounds the write-behind persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkers sets the number of persistence workers.
	PersistWorkers int `koanf:"persist_workers"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8090",
		DatabasePath:         "",
		VisitPoints:          1,
		ViolationPoints:      4,
		WarningPoints:        3,
		GradePoints:          map[string]int{},
		ImprovementThreshold: 2,
		PersistQueueSize:     10_000,
		PersistWorkers:       runtime.NumCPU(),
	}
}
