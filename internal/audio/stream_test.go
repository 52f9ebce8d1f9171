package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

type rampSource struct {
	next float32
	done bool
}

func (r *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = r.next
		r.next += 0.25
	}
}

type finishing struct {
	rampSource
}

func (f *finishing) Finished() bool { return f.done }

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	buf := make([]byte, 3*8+5)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 24 {
		t.Fatalf("n = %d, want whole frames only", n)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != float32(i)*0.25 {
			t.Fatalf("sample %d = %v", i, got)
		}
	}
	if r.Frames() != 3 {
		t.Fatalf("frames = %d", r.Frames())
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestStreamReaderFinishing(t *testing.T) {
	src := &finishing{}
	r := NewStreamReader(src)
	if _, err := r.Read(make([]byte, 16)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	src.done = true
	n, err := r.Read(make([]byte, 16))
	if n != 16 || err != io.EOF {
		t.Fatalf("n=%d err=%v, want 16 and EOF", n, err)
	}
}
