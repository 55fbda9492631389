package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/clipshuffle/clipshuffle/config"
	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/icon"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/clipshuffle/clipshuffle/style"
	"github.com/clipshuffle/clipshuffle/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.SetOut(os.Stdout)
}

// probeCmd reports the duration the configured probe sees for each file.
var probeCmd = &cobra.Command{
	Use:     "probe [file...]",
	Short:   "Print the duration of video files using the configured probe",
	Args:    cobra.MinimumNArgs(1),
	Example: "  " + constant.App + " probe --probe discoverer ./videos/intro.mp4",
	Run: func(cmd *cobra.Command, args []string) {
		prober, err := probe.New(viper.GetString(key.ProbeBackend))
		handleErr(err)

		var failed bool
		for _, path := range args {
			clip := library.NewClip(path)

			ctx, cancel := context.WithTimeout(context.Background(), config.ProbeTimeout())
			seconds, err := prober.Discover(ctx, clip.Path)
			cancel()

			if err != nil {
				failed = true
				cmd.Printf("%s %s %s\n", icon.Get(icon.Fail), style.Path(clip.Path), style.Failure(err.Error()))
				continue
			}

			cmd.Printf(
				"%s %s %s %s\n",
				icon.Get(icon.Clock),
				style.Path(clip.Path),
				style.Number(util.FormatSeconds(seconds)),
				style.Faint(fmt.Sprintf("(%.3fs)", seconds)),
			)
		}

		if failed {
			os.Exit(1)
		}
	},
}
