package main

import (
	"time"

	"github.com/spf13/cobra"

	msq "github.com/cbegin/msq-go"
)

var (
	renderOut     string
	renderPreset  string
	renderRate    int
	renderSeconds float64
)

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "score.wav", "output WAV file")
	renderCmd.Flags().StringVar(&renderPreset, "preset", "", "render a built-in song")
	renderCmd.Flags().IntVar(&renderRate, "sample-rate", 0, "output sample rate (default from config)")
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 600, "stop after this long; looping songs always run this long")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Render a song to a WAV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := msq.NewSession(sessionOptions()...)
		if err := loadSong(s, renderPreset, args); err != nil {
			return err
		}
		rate := renderRate
		if rate <= 0 {
			rate = cfg.Audio.SampleRate
		}
		limit := time.Duration(renderSeconds * float64(time.Second))
		samples, err := msq.RenderScore(s.Score(), rate, limit)
		if err != nil {
			return err
		}
		gain := float32(cfg.Audio.MasterVolume)
		for i := range samples {
			samples[i] *= gain
		}
		logger.Info("rendered", "seconds", float64(len(samples)/2)/float64(rate))
		return writeOutput(renderOut, msq.EncodeWAVFloat32LE(samples, rate, 2))
	},
}
