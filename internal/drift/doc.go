// Package drift classifies how the delay between two streams evolves
// over time.
//
// The input is the per-chunk delay series a correlation pass produced.
// The diagnosis is one of four verdicts, checked in a fixed order: PAL
// drift (the characteristic 40.9 ms/s slope of film-rate content sped up
// to 25 fps), stepping (the delay jumps between a small number of
// distinct levels, found by density-based clustering), linear drift (a
// steady slope with a convincing regression fit), and uniform (none of
// the above). A series with too few accepted chunks degrades to a
// uniform verdict with an insufficiency note instead of failing.
//
// The diagnosis is decision support for reporting and correction
// downstream. It never produces a delay itself.
package drift
