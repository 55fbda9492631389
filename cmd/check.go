package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/clipshuffle/clipshuffle/color"
	"github.com/clipshuffle/clipshuffle/icon"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/clipshuffle/clipshuffle/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dependency is an external program clipshuffle shells out to. Programs that are not
// required only degrade playback; fallback says how.
type dependency struct {
	name     string
	binary   string
	required bool
	fallback string
	install  map[string]string
}

// probeInstall holds install hints per duration probe backend.
var probeInstall = map[string]map[string]string{
	probe.BackendFFProbe: {
		"darwin":  "brew install ffmpeg",
		"linux":   "sudo apt install ffmpeg",
		"windows": "scoop install ffmpeg",
	},
	probe.BackendDiscoverer: {
		"darwin":  "brew install gstreamer",
		"linux":   "sudo apt install gstreamer1.0-plugins-base-apps",
		"windows": "scoop install gstreamer",
	},
}

func dependencies() []dependency {
	probeBackend := strings.ToLower(viper.GetString(key.ProbeBackend))
	probeBinary, ok := probe.Binary(probeBackend)
	if !ok {
		probeBinary = probeBackend
	}

	return []dependency{
		{
			name:     "player",
			binary:   viper.GetString(key.PlayerBinary),
			required: true,
			install:  map[string]string{"darwin": "brew install mpv", "linux": "sudo apt install mpv", "windows": "scoop install mpv"},
		},
		{
			name:     "probe",
			binary:   probeBinary,
			fallback: "clip durations are unknown, every clip starts from the beginning",
			install:  probeInstall[probeBackend],
		},
	}
}

// CheckDependencies exits with an explanation when a required program is missing from PATH
// and warns about optional ones.
func CheckDependencies() {
	for _, dep := range dependencies() {
		if _, err := exec.LookPath(dep.binary); err == nil {
			continue
		}

		if dep.required {
			printMissingDependencyError(dep)
			os.Exit(1)
		}

		log.Warnf("%s %s not found: %s", dep.name, dep.binary, dep.fallback)
		_, _ = fmt.Fprintf(
			os.Stderr,
			"%s %s not found, %s\n",
			style.Warning(icon.Get(icon.Warn)),
			style.Path(dep.binary),
			dep.fallback,
		)
	}
}

func printMissingDependencyError(dep dependency) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The %s '%s' was not found in your PATH.", dep.name, dep.binary)

	suggestion := ""
	if installCmd, ok := dep.install[runtime.GOOS]; ok {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Purple).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetOut(os.Stdout)
}

// checkCmd reports which external programs are available.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the player and probe programs are installed",
	Run: func(cmd *cobra.Command, args []string) {
		var missing bool

		for _, dep := range dependencies() {
			path, err := exec.LookPath(dep.binary)
			switch {
			case err != nil && dep.required:
				missing = true
				cmd.Printf("%s %s %s\n", style.Failure(icon.Get(icon.Fail)), style.Key(dep.name), style.Failure(dep.binary+" not found"))
				continue
			case err != nil:
				cmd.Printf("%s %s %s, %s\n", style.Warning(icon.Get(icon.Warn)), style.Key(dep.name), style.Warning(dep.binary+" not found"), dep.fallback)
				continue
			}
			cmd.Printf("%s %s %s\n", style.Success(icon.Get(icon.Success)), style.Key(dep.name), style.Path(path))
		}

		others := probe.AvailableBackends()
		cmd.Printf("%s %v\n", style.Faint("installed probes:"), others)

		if missing {
			os.Exit(1)
		}
	},
}
