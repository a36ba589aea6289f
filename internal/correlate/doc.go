// Package correlate estimates the time offset between two audio streams.
//
// A correlation strategy compares a reference chunk against a secondary
// chunk and reports how far the secondary lags the reference. Positive
// delays mean the secondary content plays later than the reference,
// negative delays mean it plays earlier. Four strategies resolve delays
// at sample precision (SCC, GCC-PHAT, GCC-SCOT, and whitened cross
// correlation) and three at STFT frame precision (MFCC-DTW, onset
// envelopes, and mel spectrogram envelopes). Sample-precision delays can
// be refined below one sample with parabolic peak interpolation.
//
// CorrelateChunks runs a whole measurement pass: it extracts chunk pairs
// at planned start positions, conditions them with an optional filter,
// and correlates them on a small worker pool. A chunk that cannot be
// extracted or correlated becomes a rejected result carrying the reason;
// only an invalid configuration fails the pass itself.
package correlate
