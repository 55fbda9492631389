// Package cmd implements the command-line interface for clipshuffle.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/clipshuffle/clipshuffle/color"
	"github.com/clipshuffle/clipshuffle/config"
	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/duration"
	"github.com/clipshuffle/clipshuffle/icon"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/player"
	"github.com/clipshuffle/clipshuffle/probe"
	"github.com/clipshuffle/clipshuffle/rotation"
	"github.com/clipshuffle/clipshuffle/selector"
	"github.com/clipshuffle/clipshuffle/style"
	"github.com/clipshuffle/clipshuffle/util"
	"github.com/clipshuffle/clipshuffle/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("probe", "P", "", "Duration probe backend (ffprobe, discoverer)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("probe", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return probe.Backends(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.ProbeBackend, rootCmd.PersistentFlags().Lookup("probe")))

	rootCmd.Flags().IntP("interval", "i", 0, "Milliseconds between clip switches")
	lo.Must0(viper.BindPFlag(key.RotationIntervalMs, rootCmd.Flags().Lookup("interval")))

	rootCmd.Flags().Int("margin", 0, "Seconds of playback every random offset must leave")
	lo.Must0(viper.BindPFlag(key.RotationSafetyMargin, rootCmd.Flags().Lookup("margin")))

	rootCmd.Flags().Int64("seed", 0, "Seed for clip and offset selection, 0 seeds from the clock")
	lo.Must0(viper.BindPFlag(key.RotationSeed, rootCmd.Flags().Lookup("seed")))

	rootCmd.Flags().BoolP("mute", "m", false, "Start the player muted")
	lo.Must0(viper.BindPFlag(key.PlayerMute, rootCmd.Flags().Lookup("mute")))

	rootCmd.Flags().BoolP("prewarm", "w", false, "Probe every clip's duration before playback starts")
	lo.Must0(viper.BindPFlag(key.ProbePrewarm, rootCmd.Flags().Lookup("prewarm")))
}

// rootCmd plays clips from the library given as the only argument.
var rootCmd = &cobra.Command{
	Use:   constant.App + " [library]",
	Short: "Play random short clips from a video library",
	Long: style.Bold(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Plays random clips from random offsets, switching every few seconds") + `

Runtime controls (send to the process):
  SIGUSR1  toggle pause
  SIGUSR2  skip to the next clip
  SIGINT   stop`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		root := viper.GetString(key.LibraryPath)
		if len(args) == 1 {
			root = args[0]
		}

		CheckDependencies()
		handleErr(play(root))
	},
}

// play runs the rotation until interrupted. Deferred cleanup runs before any error reaches handleErr.
func play(root string) error {
	lib, err := library.Scan(root, config.Extensions())
	if err != nil {
		return err
	}

	if err := log.Setup(lib.Root()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s logging disabled: %v\n", icon.Get(icon.Warn), err)
	}
	defer util.Ignore(log.Close)

	prober, err := probe.New(viper.GetString(key.ProbeBackend))
	if err != nil {
		return err
	}

	durations := duration.New(prober, config.ProbeTimeout())
	if viper.GetBool(key.CachePersist) {
		if err := durations.Persist(where.Durations()); err != nil {
			log.Warnf("duration store unavailable: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viper.GetBool(key.ProbePrewarm) {
		prewarm(ctx, durations, lib)
	}

	backend, err := player.NewMPV(player.Options{
		Binary:     viper.GetString(key.PlayerBinary),
		Fullscreen: viper.GetBool(key.PlayerFullscreen),
		Mute:       viper.GetBool(key.PlayerMute),
		ExtraArgs:  viper.GetStringSlice(key.PlayerExtraArgs),
	})
	if err != nil {
		return err
	}
	defer util.Ignore(backend.Close)

	rotator := rotation.New(
		lib,
		selector.New(durations, uint64(viper.GetInt64(key.RotationSeed)), config.SafetyMargin()),
		backend,
		rotation.Options{
			Interval:      config.RotationInterval(),
			FreezeOnPause: viper.GetBool(key.RotationFreezeOnPause),
		},
	)
	defer rotator.Cleanup()

	stopControls := watchControls(ctx, rotator)
	defer stopControls()

	fmt.Printf(
		"%s %s from %s, switching every %s\n",
		icon.Get(icon.Play),
		style.Number(util.Quantify(lib.Len(), "clip", "clips")),
		style.Path(lib.Root()),
		config.RotationInterval(),
	)

	err = rotator.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func prewarm(ctx context.Context, durations *duration.Cache, lib *library.Library) {
	var (
		workers = util.Clamp(viper.GetInt(key.ProbeWorkers), 1, 32)
		tty     = util.IsTerminal()
		mu      sync.Mutex
		erase   = func() {}
	)

	failed := durations.Prewarm(ctx, lib.Clips(), workers, func(done, total int) {
		if !tty {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		erase()
		erase = util.PrintErasable(fmt.Sprintf("%s Probing durations %d/%d", icon.Get(icon.Progress), done, total))
	})
	erase()

	if failed > 0 {
		fmt.Printf("%s %s could not be probed and will start from the beginning\n", icon.Get(icon.Warn), util.Quantify(failed, "clip", "clips"))
	}
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
