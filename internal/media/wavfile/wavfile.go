package wavfile

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"lockstep/internal/audio"
)

// Read decodes a WAV file into a mono analysis buffer. Multi-channel
// audio is downmixed by averaging; samples normalize to [-1, 1] by the
// source bit depth.
func Read(path string) (*audio.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("read wav %s: not a RIFF/WAVE file", path)
	}
	switch decoder.WavAudioFormat {
	case 1, 65534: // PCM, extensible PCM
	default:
		return nil, fmt.Errorf("read wav %s: unsupported encoding %d, expected PCM", path, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	mono, rate, err := downmix(buf)
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	return audio.NewBuffer(mono, rate)
}

func downmix(buf *goaudio.IntBuffer) ([]float64, int, error) {
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("empty PCM buffer")
	}
	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, 0, fmt.Errorf("invalid channel count %d", channels)
	}

	scale, offset, err := sampleRange(buf.SourceBitDepth)
	if err != nil {
		return nil, 0, err
	}

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) - offset
		}
		mono[i] = sum / float64(channels) / scale
	}
	return mono, buf.Format.SampleRate, nil
}

// sampleRange returns the full-scale divisor and the integer offset of
// one sample. 8-bit WAV stores unsigned samples centered on 128.
func sampleRange(bitDepth int) (scale, offset float64, err error) {
	switch bitDepth {
	case 8:
		return 128, 128, nil
	case 16:
		return 32768, 0, nil
	case 24:
		return 8388608, 0, nil
	case 32:
		return 2147483648, 0, nil
	}
	return 0, 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
}
