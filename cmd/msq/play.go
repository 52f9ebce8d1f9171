package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/midiout"
	"github.com/cbegin/msq-go/internal/playback"
)

var (
	playPreset string
	playMIDI   string
	playAudio  bool
	playLoops  int
	playTempo  int
)

func init() {
	playCmd.Flags().StringVar(&playPreset, "preset", "", "play a built-in song")
	playCmd.Flags().StringVar(&playMIDI, "midi", "", "send to this MIDI output port instead of the speakers (default from config)")
	playCmd.Flags().BoolVar(&playAudio, "audio", false, "use the speakers even if the config names a MIDI port")
	playCmd.Flags().IntVar(&playLoops, "loops", 0, "for looping songs, stop after N loops (0 = until interrupted)")
	playCmd.Flags().IntVar(&playTempo, "tempo", 0, "override the song tempo")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [files...]",
	Short: "Play a song in real time",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := playMIDI
		if port == "" && !playAudio {
			port = cfg.MIDI.Port
		}
		if port != "" {
			return playOnMIDI(port, args)
		}
		return playOnSpeakers(args)
	},
}

func playOnSpeakers(args []string) error {
	pl, err := msq.NewPlayer(cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(cfg.Audio.MasterVolume)
	if err := pl.Start(); err != nil {
		return err
	}
	defer pl.Close()

	if err := run(pl, args); err != nil {
		return err
	}
	// let the last notes ring out
	deadline := time.Now().Add(2 * time.Second)
	for !pl.Idle() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

func playOnMIDI(name string, args []string) error {
	defer midi.CloseDriver()
	out, err := midi.FindOutPort(name)
	if err != nil {
		return fmt.Errorf("can't find MIDI port %q: %w", name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return err
	}
	port := midiout.NewPort(send)
	defer port.Silence()
	if err := run(port, args); err != nil {
		return err
	}
	return port.Err()
}

// run walks the song on the wall clock at 60 fps until playback is back in
// edit mode. An interrupt sends the walker off stage first.
func run(voices playback.Voices, args []string) error {
	s := msq.NewSession(sessionOptions(msq.WithVoices(voices))...)
	if err := loadSong(s, playPreset, args); err != nil {
		return err
	}
	if playTempo > 0 {
		if err := s.SetTempo(playTempo); err != nil {
			return err
		}
	}
	sc := s.Score()
	logger.Info("playing", "bars", sc.End, "tempo", sc.Tempo, "loop", sc.Loop)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status := debounce.New(250 * time.Millisecond)
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	start := time.Now()
	s.Play()
	lastBar, loops := -1, 0
	for {
		select {
		case <-ctx.Done():
			if s.Stop() {
				logger.Info("stopping")
			}
			ctx = context.Background()
		case <-ticker.C:
			s.Tick(time.Since(start))
		}
		if s.State() == playback.StateEdit {
			fmt.Println()
			return nil
		}
		f := s.Frame()
		if f.State != playback.StatePlaying {
			continue
		}
		bar := f.Position - 2
		if bar < lastBar {
			loops++
			logger.Debug("loop", "count", loops)
			if playLoops > 0 && loops >= playLoops {
				s.Stop()
			}
		}
		if bar != lastBar {
			tempo := f.Tempo
			status(func() {
				fmt.Printf("\rbar %4d/%d  tempo %4d", bar+1, sc.End, tempo)
			})
		}
		lastBar = bar
	}
}
