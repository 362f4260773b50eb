package pipeline

import "errors"

var (
	// ErrNilData is returned when Process is handed no snapshot at all.
	ErrNilData = errors.New("pipeline: nil raw data")
	// ErrNoPlayers is returned when the snapshot carries no player
	// directory to resolve results against.
	ErrNoPlayers = errors.New("pipeline: missing players directory")
	// ErrNoCharts is returned when the snapshot carries no shared-chart
	// directory to resolve results against.
	ErrNoCharts = errors.New("pipeline: missing shared charts directory")
)
