// Package benchstore persists calibration benchmark results.
//
// The kernel itself keeps no durable state; this store is tooling. The
// bench CLI records each calibration run so later runs can be compared
// against history, which is how tick-budget regressions are caught on a
// given host before they show up in production telemetry.
package benchstore
