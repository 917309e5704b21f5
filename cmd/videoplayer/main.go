// Command videoplayer renders a video in the terminal using ANSI truecolor
// half-block characters.
//
// # Usage
//
//	videoplayer [flags] <video>
//
// <video> is a filesystem path to a video file, or a directory of
// pre-extracted PNG frames. Flags override the config file ($VIDEOPLAYER_CONFIG or
// --config), which overrides built-in defaults.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ansiterm/videoplayer/internal/config"
	"github.com/ansiterm/videoplayer/internal/demopipe"
	"github.com/ansiterm/videoplayer/internal/log"
	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/player"
	"github.com/ansiterm/videoplayer/internal/profile"
	"github.com/ansiterm/videoplayer/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	logCfg := log.NewConfig()
	profileCfg := profile.NewConfig()

	var (
		sizeFlag    string
		fpsFlag     int
		configFlag  string
		seekSeconds int
		maskBits    uint8
	)

	rootCmd := &cobra.Command{
		Use:           "videoplayer <video>",
		Short:         "Render a video in the terminal with ANSI half-block characters",
		Args:          cobra.ExactArgs(1),
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runPlayer(args[0], playerFlags{
				size:        sizeFlag,
				fps:         fpsFlag,
				configPath:  configFlag,
				seekSeconds: seekSeconds,
				maskBits:    maskBits,
			}, logCfg, profileCfg)
		},
	}

	rootCmd.Flags().StringVar(&sizeFlag, "size", "", "fixed terminal size WIDTHxHEIGHT (default: track terminal)")
	rootCmd.Flags().IntVar(&fpsFlag, "fps", 24, "playback frame rate (also the ffmpeg extraction rate for a video file)")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "path to a YAML config file")
	rootCmd.Flags().IntVar(&seekSeconds, "seek-seconds", 0, "seek step for Left/Right arrows (0 = default)")
	rootCmd.Flags().Uint8Var(&maskBits, "mask-bits", 0, "ANSI diff color quantization bits (0 = default)")

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profileCfg.RegisterFlags(rootCmd.PersistentFlags())

	if err := logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", err)
	}

	if err := profileCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "videoplayer:", err)

		return 1
	}

	return exitCode
}

// exitCode carries the player's exit status out of RunE, since cobra's
// Execute only reports whether an error occurred, not which status to use.
var exitCode int

type playerFlags struct {
	size        string
	fps         int
	configPath  string
	seekSeconds int
	maskBits    uint8
}

func runPlayer(videoPath string, flags playerFlags, logCfg *log.Config, profileCfg *profile.Config) error {
	handler, err := logCfg.NewHandler(os.Stderr)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))

	prof := profileCfg.NewProfiler()
	if err := prof.Start(); err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}

	defer func() {
		if err := prof.Stop(); err != nil {
			slog.Error("stopping profiler", "error", err)
		}
	}()

	var fileCfg config.Config

	configPath := flags.configPath
	if configPath == "" {
		configPath = os.Getenv("VIDEOPLAYER_CONFIG")
	}

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}

		fileCfg = *loaded
	}

	opts, err := resolveOptions(flags, fileCfg)
	if err != nil {
		return err
	}

	producer, consumer := pipe.New()

	pl, err := demopipe.New(videoPath, flags.fps, producer)
	if err != nil {
		return fmt.Errorf("opening %s: %w", videoPath, err)
	}
	defer pl.Close()

	exitCode = player.Run(pl, producer, consumer, opts)

	return nil
}

// resolveOptions merges CLI flags over the config file, flags taking
// precedence, and environment variables for switches that have none.
func resolveOptions(flags playerFlags, fileCfg config.Config) (player.Options, error) {
	opts := player.Options{
		InputSeek: flags.seekSeconds,
		NoDisplay: fileCfg.NoDisplay || truthyEnv("NO_DISPLAY_OUTPUT"),
		NoAudio:   fileCfg.NoAudio || truthyEnv("NO_AUDIO_OUTPUT"),
	}

	opts.Render.UseStdout = truthyEnv("USE_STDOUT")
	opts.Render.MaskBits = flags.maskBits

	if opts.InputSeek == 0 {
		opts.InputSeek = fileCfg.SeekSeconds
	}

	if opts.Render.MaskBits == 0 {
		opts.Render.MaskBits = fileCfg.MaskBits
	}

	sizeStr := flags.size
	if sizeStr == "" {
		sizeStr = fileCfg.Size
	}

	if sizeStr != "" {
		size, err := parseSize(sizeStr)
		if err != nil {
			return player.Options{}, err
		}

		opts.Size = &size
	}

	return opts, nil
}

func parseSize(s string) ([2]uint16, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return [2]uint16{}, fmt.Errorf("invalid --size %q: expected WIDTHxHEIGHT", s)
	}

	width, err := strconv.ParseUint(w, 10, 16)
	if err != nil {
		return [2]uint16{}, fmt.Errorf("invalid --size %q: %w", s, err)
	}

	height, err := strconv.ParseUint(h, 10, 16)
	if err != nil {
		return [2]uint16{}, fmt.Errorf("invalid --size %q: %w", s, err)
	}

	return [2]uint16{uint16(width), uint16(height)}, nil
}

func truthyEnv(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))

	return v == "y" || v == "yes" || (v == "" && envIsSet(name))
}

func envIsSet(name string) bool {
	_, ok := os.LookupEnv(name)

	return ok
}
