// Package wavfile reads RIFF/WAVE PCM files into analysis buffers.
//
// The surrounding toolchain extracts and decodes container audio to
// intermediate WAV files; this package is the bridge from those files
// to the mono float64 buffers correlation works on. Multi-channel
// input is downmixed by averaging each frame's channels.
package wavfile
