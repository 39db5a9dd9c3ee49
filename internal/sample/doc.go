// Package sample defines the measurement data model for one tensile test run
// and a thread-safe, append-only store for it. The serial link reader is the
// sole writer; everything else works on consistent snapshots.
package sample
