package main

import (
	"github.com/spf13/cobra"

	msq "github.com/cbegin/msq-go"
)

var (
	midiOut    string
	midiPreset string
)

func init() {
	midiCmd.Flags().StringVarP(&midiOut, "output", "o", "score.mid", "output MIDI file")
	midiCmd.Flags().StringVar(&midiPreset, "preset", "", "render a built-in song")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi [files...]",
	Short: "Render a song to a standard MIDI file",
	Long: `Writes one quarter note per bar up to the end mark. Each instrument gets
its own channel and tempo markers become tempo changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := msq.NewSession(sessionOptions()...)
		if err := loadSong(s, midiPreset, args); err != nil {
			return err
		}
		data, err := encode(s, "mid")
		if err != nil {
			return err
		}
		return writeOutput(midiOut, data)
	},
}
