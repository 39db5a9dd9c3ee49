// Package analysis turns a recorded run plus specimen geometry into
// engineering stress-strain results: compliance-corrected displacement,
// tensile strength, elastic modulus with goodness of fit, elongation at
// break, step-loss detection, and cross-specimen statistics.
//
// Everything here is a deterministic, synchronous transform over immutable
// snapshots. No locking, no I/O.
package analysis
