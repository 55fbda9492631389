package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// FFProbe reads the container duration from ffprobe's JSON output.
type FFProbe struct {
	Binary string
	run    runner
}

// NewFFProbe returns an FFProbe using the ffprobe found on PATH.
func NewFFProbe() *FFProbe {
	return &FFProbe{Binary: binaries[BackendFFProbe], run: execRunner}
}

type ffprobeResult struct {
	Format struct {
		Filename string `json:"filename"`
		Duration string `json:"duration"`
	} `json:"format"`
}

// Discover implements Prober.
func (f *FFProbe) Discover(ctx context.Context, path string) (float64, error) {
	output, err := f.run(ctx, f.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}

	seconds, err := parseFFProbe(output)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return seconds, nil
}

func parseFFProbe(output []byte) (float64, error) {
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	if result.Format.Duration == "" || result.Format.Duration == "N/A" {
		return 0, ErrNoDuration
	}

	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", result.Format.Duration, err)
	}
	if seconds <= 0 {
		return 0, ErrNoDuration
	}
	return seconds, nil
}
