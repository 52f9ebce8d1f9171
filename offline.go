package msq

import (
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/cbegin/msq-go/internal/playback"
	"github.com/cbegin/msq-go/internal/score"
	"github.com/cbegin/msq-go/internal/voice"
)

const (
	renderFPS = 60
	maxTail   = 3 * time.Second
)

// RenderScore plays s offline the way the editor would: a session walks the
// score on a virtual 60 fps clock while a voice bank renders every frame.
// Rendering ends once playback is back in edit mode and the last note has
// faded, or at maxDuration for looping scores.
func RenderScore(s *score.Score, sampleRate int, maxDuration time.Duration) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	bank := voice.NewBank(sampleRate)
	sess := NewSession(WithVoices(bank))
	if err := sess.Replace(s); err != nil {
		return nil, err
	}
	sess.Play()
	bank.Silence()

	chunk := max(int64(sampleRate/renderFPS), 1)
	maxFrames := int64(maxDuration) * int64(sampleRate) / int64(time.Second)
	tailFrames := int64(maxTail) * int64(sampleRate) / int64(time.Second)
	var (
		out    []float32
		frames int64
		tail   int64
	)
	for frames < maxFrames {
		sess.Tick(time.Duration(frames) * time.Second / time.Duration(sampleRate))
		done := sess.State() == playback.StateEdit
		if done && (bank.Idle() || tail >= tailFrames) {
			break
		}
		n := min(chunk, maxFrames-frames)
		buf := make([]float32, n*2)
		bank.Process(buf)
		out = append(out, buf...)
		if done {
			tail += n
		}
		frames += n
	}
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
