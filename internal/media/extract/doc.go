// Package extract pulls a single audio stream out of a media container
// as a mono 16-bit PCM WAV file ready for correlation.
//
// Correlation compares two time series, not two mixes, so every source
// is downmixed to mono the same way. Extraction shells out to ffmpeg;
// callers pick the stream with internal/media/trackpick and read the
// result back through internal/media/wavfile.
package extract
