package ffprobe

import (
	"math"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "start_time": "0.042000",
      "avg_frame_rate": "24000/1001",
      "disposition": {"default": 1, "forced": 0}
    },
    {
      "index": 1,
      "codec_name": "dts",
      "codec_type": "audio",
      "channels": 6,
      "sample_rate": "48000",
      "start_time": "0.042000",
      "tags": {"language": "eng"},
      "disposition": {"default": 1, "forced": 0}
    },
    {
      "index": 2,
      "codec_name": "ac3",
      "codec_type": "audio",
      "channels": 2,
      "sample_rate": "48000",
      "start_time": "0.070000",
      "tags": {"language": "jpn", "title": "Commentary"}
    },
    {
      "index": 3,
      "codec_name": "subrip",
      "codec_type": "subtitle",
      "start_time": "0.000000",
      "tags": {"language": "eng"},
      "disposition": {"default": 0, "forced": 1}
    }
  ],
  "format": {
    "filename": "movie.mkv",
    "nb_streams": 4,
    "duration": "5400.123",
    "size": "1000",
    "bit_rate": "32000",
    "format_name": "matroska,webm"
  }
}`

func TestParse(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.SubtitleStreamCount() != 1 {
		t.Fatalf("expected 1 subtitle stream, got %d", result.SubtitleStreamCount())
	}
	if result.Streams[1].Tags["language"] != "eng" {
		t.Fatalf("expected language tag parsed, got %v", result.Streams[1].Tags)
	}
	if result.Streams[1].Disposition.Default != 1 {
		t.Fatalf("expected default disposition, got %+v", result.Streams[1].Disposition)
	}
	if result.Streams[3].Disposition.Forced != 1 {
		t.Fatalf("expected forced disposition, got %+v", result.Streams[3].Disposition)
	}
	if result.Streams[1].SampleRateHz() != 48000 {
		t.Fatalf("expected sample rate 48000, got %d", result.Streams[1].SampleRateHz())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw payload retained")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFrameRate(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	expected := 24000.0 / 1001.0
	if math.Abs(result.FrameRate()-expected) > 1e-9 {
		t.Fatalf("expected frame rate %v, got %v", expected, result.FrameRate())
	}
}

func TestFrameRateWithoutVideo(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if result.FrameRate() != 0 {
		t.Fatalf("expected 0 frame rate, got %v", result.FrameRate())
	}
}

func TestContainerDelays(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	delays := result.ContainerDelays()
	if delays[0] != 0 {
		t.Fatalf("expected video delay 0, got %d", delays[0])
	}
	if delays[1] != 0 {
		t.Fatalf("expected aligned audio delay 0, got %d", delays[1])
	}
	if delays[2] != 28 {
		t.Fatalf("expected offset audio delay 28, got %d", delays[2])
	}
	if _, ok := delays[3]; ok {
		t.Fatalf("expected subtitle stream skipped, got %v", delays)
	}
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestParseFraction(t *testing.T) {
	cases := []struct {
		in       string
		expected float64
	}{
		{"25/1", 25},
		{"24000/1001", 24000.0 / 1001.0},
		{"23.976", 23.976},
		{"", 0},
		{"0/0", 0},
		{"x/y", 0},
	}
	for _, tc := range cases {
		if got := parseFraction(tc.in); math.Abs(got-tc.expected) > 1e-9 {
			t.Fatalf("parseFraction(%q): expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}
