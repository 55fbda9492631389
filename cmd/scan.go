package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/clipshuffle/clipshuffle/config"
	"github.com/clipshuffle/clipshuffle/duration"
	"github.com/clipshuffle/clipshuffle/icon"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/clipshuffle/clipshuffle/style"
	"github.com/clipshuffle/clipshuffle/util"
	"github.com/clipshuffle/clipshuffle/where"
	"github.com/invopop/jsonschema"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scanReport is the structured output of the scan command.
type scanReport struct {
	Root  string      `json:"root" jsonschema:"description=Absolute path of the scanned library."`
	Count int         `json:"count" jsonschema:"description=Number of clips listed."`
	Clips []scanEntry `json:"clips"`
}

type scanEntry struct {
	library.Clip
	Name     string   `json:"name" jsonschema:"description=File name without extension."`
	Duration *float64 `json:"duration,omitempty" jsonschema:"description=Duration in seconds. Only present with --durations when the probe succeeded."`
	Error    string   `json:"error,omitempty" jsonschema:"description=Why the duration could not be probed."`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	scanCmd.Flags().StringP("match", "m", "", "Only list clips whose name fuzzy-matches the given text")
	scanCmd.Flags().BoolP("durations", "d", false, "Probe and include clip durations")
	scanCmd.SetOut(os.Stdout)
}

// scanCmd lists the clips a library would rotate through.
var scanCmd = &cobra.Command{
	Use:   "scan [library]",
	Short: "List the clips found in a library",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := viper.GetString(key.LibraryPath)
		if len(args) == 1 {
			root = args[0]
		}

		var (
			asJson    = lo.Must(cmd.Flags().GetBool("json"))
			match     = lo.Must(cmd.Flags().GetString("match"))
			durations = lo.Must(cmd.Flags().GetBool("durations"))
		)

		lib, err := library.Scan(root, config.Extensions())
		handleErr(err)

		var cache *duration.Cache
		if durations {
			prober, err := probe.New(viper.GetString(key.ProbeBackend))
			handleErr(err)
			cache = duration.New(prober, config.ProbeTimeout())
			if viper.GetBool(key.CachePersist) {
				handleErr(cache.Persist(where.Durations()))
			}
		}

		report := buildScanReport(cmd.Context(), lib, match, cache)

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(report))
			return
		}

		printScanReport(cmd.OutOrStdout(), report)
	},
}

func buildScanReport(ctx context.Context, lib *library.Library, match string, cache *duration.Cache) scanReport {
	if ctx == nil {
		ctx = context.Background()
	}

	clips := lib.Clips()
	if match != "" {
		clips = lo.Filter(clips, func(c library.Clip, _ int) bool {
			return fuzzy.MatchFold(match, c.Name())
		})
	}

	if cache != nil {
		cache.Prewarm(ctx, clips, util.Clamp(viper.GetInt(key.ProbeWorkers), 1, 32), nil)
	}

	entries := lo.Map(clips, func(c library.Clip, _ int) scanEntry {
		entry := scanEntry{Clip: c, Name: c.Name()}
		if cache == nil {
			return entry
		}

		seconds, err := cache.Lookup(ctx, c).Get()
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Duration = &seconds
		}
		return entry
	})

	return scanReport{Root: lib.Root(), Count: len(entries), Clips: entries}
}

func printScanReport(out io.Writer, report scanReport) {
	for _, entry := range report.Clips {
		line := fmt.Sprintf("%s %s", icon.Get(icon.Video), style.Path(entry.Path))
		switch {
		case entry.Duration != nil:
			line += " " + style.Number(util.FormatSeconds(*entry.Duration))
		case entry.Error != "":
			line += " " + style.Failure("?")
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintf(out, "\n%s in %s\n", style.Bold(util.Quantify(report.Count, "clip", "clips")), report.Root)
}

func init() {
	scanCmd.AddCommand(scanSchemaCmd)
}

// scanSchemaCmd prints the JSON schema of `scan --json`.
var scanSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for scan output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&scanReport{})))
	},
}
