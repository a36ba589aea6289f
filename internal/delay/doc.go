// Package delay turns per-chunk correlation results into the signed
// container delays a multiplexer applies to each output track.
//
// Resolution happens in three steps. A selector reduces the accepted
// chunk series of one source to a single representative delay. Finalize
// gathers those per-source delays, computes the global shift that keeps
// every final delay non-negative, and rounds each shifted value
// independently so rounding error never accumulates across tracks.
// TrackDelay then maps one output track onto its final delay with a
// fixed rule set: reference video and subtitles take the global shift
// alone, reference audio adds its own internal A/V offset to the shift,
// synced sources use their correlation delay as measured, and subtitles
// whose timestamps already encode a correction take zero.
//
// TrackDelay is total over its inputs. Unknown sources resolve to zero
// rather than erroring, so plan construction never fails on delay math.
package delay
