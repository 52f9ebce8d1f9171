package msq

import (
	"errors"
	"sync"
	"time"

	intaudio "github.com/cbegin/msq-go/internal/audio"
	intchip "github.com/cbegin/msq-go/internal/chiptune"
	"github.com/cbegin/msq-go/internal/voice"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	voices    int
	sampleTap func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{voices: intchip.DefaultParams().Voices}
}

// WithPolyphony sets how many voices may sound at once. The oldest voice is
// stolen when they run out.
func WithPolyphony(n int) PlayerOption {
	return func(cfg *playerConfig) {
		if n > 0 {
			cfg.voices = n
		}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player is the live sound output of a Session. It implements the Voices a
// session triggers notes on; pass it with WithVoices. The audio device is only
// opened by Start.
type Player struct {
	mu         sync.Mutex
	bank       *voice.Bank
	audio      *intaudio.Player
	sampleRate int
	baseGain   float64
	volume     float64
	sampleTap  func([]float32)
}

type tapSource struct {
	bank *voice.Bank
	tap  func([]float32)
}

func (s *tapSource) Process(dst []float32) {
	s.bank.Process(dst)
	if s.tap != nil {
		s.tap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	params := intchip.DefaultParams()
	params.Voices = cfg.voices
	return &Player{
		bank:       voice.NewBankWithParams(sampleRate, params),
		sampleRate: sampleRate,
		baseGain:   params.MasterGain,
		volume:     1,
		sampleTap:  cfg.sampleTap,
	}, nil
}

// Trigger queues a chord; see voice.Bank.Trigger.
func (p *Player) Trigger(instrument int, pitches []uint8, lead time.Duration) {
	p.bank.Trigger(instrument, pitches, lead)
}

// Start opens the audio device on first use and resumes output.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.sampleRate, &tapSource{bank: p.bank, tap: p.sampleTap})
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

// Silence cuts everything that is sounding or queued.
func (p *Player) Silence() {
	p.bank.Silence()
}

// Idle reports whether the last note has died away.
func (p *Player) Idle() bool {
	return p.bank.Idle()
}

// Close releases the audio device. The player can be started again.
func (p *Player) Close() error {
	p.mu.Lock()
	a := p.audio
	p.audio = nil
	p.mu.Unlock()
	p.bank.Silence()
	if a == nil {
		return nil
	}
	return a.Close()
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.bank.SetMasterGain(p.baseGain * p.volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PlaybackPosition returns how many frames have been rendered for the audio
// driver, or 0 before Start.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return a.Frames()
}

func (p *Player) SampleRate() int { return p.sampleRate }
