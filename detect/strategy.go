package detect

import "context"

// ExecutionMode selects which detection strategy serves a request.
// Desktop installs talk to the bundled analysis server; web/offline mode
// keeps the client-side heuristic. Both paths stay alive deliberately.
type ExecutionMode string

const (
	ModeLocal  ExecutionMode = "local"
	ModeRemote ExecutionMode = "remote"
)

// Detector produces parse defaults from a content sample.
type Detector interface {
	Detect(ctx context.Context, sample string) (Result, error)
}

// HeuristicDetector is the in-process strategy wrapping Detect.
type HeuristicDetector struct{}

// Detect implements Detector. It never returns an error.
func (HeuristicDetector) Detect(_ context.Context, sample string) (Result, error) {
	return Detect(sample), nil
}

// ForMode returns the detector for the given execution mode. Remote mode
// falls back to the heuristic internally when the server is unreachable.
func ForMode(mode ExecutionMode, serverURL string) Detector {
	if mode == ModeRemote && serverURL != "" {
		return NewRemoteDetector(serverURL)
	}
	return HeuristicDetector{}
}
