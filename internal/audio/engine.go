package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/basedrum/basedrum-api/internal/sequencer"
	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// Engine owns the audio device. Construction can fail (no device,
// headless host); callers treat a missing engine as silent output and
// keep the sequencer running for step callbacks.
type Engine struct {
	ctx *oto.Context
}

func NewEngine() (*Engine, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create audio context: %w", err)
	}
	<-ready
	return &Engine{ctx: ctx}, nil
}

// NewVoice builds a synth voice for a preset id. Unknown presets get
// the closed-hat, which is at least audible and inoffensive.
func (e *Engine) NewVoice(preset string) sequencer.Voice {
	render, ok := renderers[preset]
	if !ok {
		render = renderHat
	}
	return &synthVoice{engine: e, render: render}
}

// play fires one rendered buffer and lets oto drain it. The player
// closes itself when the buffer ends.
func (e *Engine) play(samples []float32) {
	if e == nil || e.ctx == nil || len(samples) == 0 {
		return
	}
	buf := floatBufferToLE(samples)
	p := e.ctx.NewPlayer(bytes.NewReader(buf))
	p.Play()
}

// floatBufferToLE converts mono float32 samples to interleaved stereo
// little-endian bytes in oto's FormatFloat32LE layout.
func floatBufferToLE(samples []float32) []byte {
	out := make([]byte, 0, len(samples)*8)
	var scratch [4]byte
	for _, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		out = append(out, scratch[:]...) // left
		out = append(out, scratch[:]...) // right
	}
	return out
}
