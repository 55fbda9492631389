package probe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/clipshuffle/clipshuffle/util"
)

// gst-discoverer prints fractional seconds with variable precision, usually 9 digits.
// "Duration: 0:58:12.345000000" is 58m12.345s.
var durationPattern = regexp.MustCompile(`Duration:\s*(?P<hours>\d+):(?P<minutes>\d+):(?P<seconds>\d+)(?:\.(?P<frac>\d+))?`)

// Discoverer reads durations from gst-discoverer-1.0.
type Discoverer struct {
	Binary string
	run    runner
}

// NewDiscoverer returns a Discoverer using the gst-discoverer-1.0 found on PATH.
func NewDiscoverer() *Discoverer {
	return &Discoverer{Binary: binaries[BackendDiscoverer], run: execRunner}
}

// Discover implements Prober.
func (d *Discoverer) Discover(ctx context.Context, path string) (float64, error) {
	output, err := d.run(ctx, d.Binary, path)
	if err != nil {
		return 0, err
	}

	seconds, err := parseDiscoverer(string(output))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return seconds, nil
}

func parseDiscoverer(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		groups := util.ReGroups(durationPattern, line)
		if len(groups) == 0 {
			continue
		}

		hours, _ := strconv.Atoi(groups["hours"])
		minutes, _ := strconv.Atoi(groups["minutes"])
		secs, _ := strconv.Atoi(groups["seconds"])

		seconds := float64(hours*3600+minutes*60+secs) + fracToSeconds(groups["frac"])
		if seconds <= 0 {
			return 0, ErrNoDuration
		}
		return seconds, nil
	}

	return 0, ErrNoDuration
}

// fracToSeconds converts the digits after the decimal point, of any precision, to a fraction of a second.
func fracToSeconds(frac string) float64 {
	if frac == "" {
		return 0
	}
	f, err := strconv.ParseFloat("0."+frac, 64)
	if err != nil {
		return 0
	}
	return f
}
