package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/config"
	"github.com/cbegin/msq-go/internal/format"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "msq",
	Short: "Step sequencer song tool",
	Long: `msq reads songs in the .msq and .json formats, converts between them,
renders them to WAV or MIDI, plays them and serves them over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		if cfgPath != "" {
			cfg, err = config.LoadFrom(cfgPath)
		} else {
			cfg, err = config.Load()
		}
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/msq/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func sessionOptions(extra ...msq.Option) []msq.Option {
	opts := []msq.Option{
		msq.WithLogger(logger),
		msq.WithTempo(cfg.Editor.DefaultTempo),
		msq.WithLoop(cfg.Editor.Loop),
		msq.WithUndoLimit(cfg.Editor.UndoLimit),
	}
	return append(opts, extra...)
}

// readFiles loads an import batch from disk.
func readFiles(paths []string) ([]format.File, error) {
	files := make([]format.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, format.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// loadSong fills s from a preset or from files given on the command line.
func loadSong(s *msq.Session, preset string, paths []string) error {
	switch {
	case preset != "" && len(paths) > 0:
		return fmt.Errorf("use either --preset or files, not both")
	case preset != "":
		return s.LoadPreset(preset)
	case len(paths) == 0:
		return fmt.Errorf("no input files")
	}
	files, err := readFiles(paths)
	if err != nil {
		return err
	}
	return s.Import(files)
}
