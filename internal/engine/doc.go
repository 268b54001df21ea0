// Package engine implements the three-register propagation core: the
// upsilon/beta/kappa state, the per-microtick engine step, the psi
// transform, the kappa accrual, and the orchestrator that sequences
// them.
//
// ARCHITECTURE:
//
// Tick Structure:
// A run is a sequence of ticks, each made of 11 microticks in three
// interleaved phases:
//   - E (engine) on microticks 1, 4, 7, 10: snapshot epsilon, propagate
//     upsilon and beta, detect patterns on the new upsilon.
//   - M (memory) on microticks 2, 5, 8, 11: detect patterns on beta,
//     decide and run the psi transform, accrue kappa.
//   - R (reset) on microticks 3, 6, 9: accrue kappa without a
//     transform, clear phase-scoped flags.
// After every microtick the orchestrator invokes the observer exactly
// once with the event booleans and a read-only view of the state.
//
// Single-Writer Loop:
// One goroutine owns one State for the whole run. Every step reads and
// writes the same registers without synchronization, so nothing here
// may run concurrently within a run. Independent runs with private
// State and Config instances may run in parallel.
//
// CRITICAL PATTERNS:
//
// Exact Arithmetic Only:
// Registers are raw-component rationals (internal/rational). No
// float64 enters propagation; ratio evaluation produces booleans and
// snapshots for observers, never values written back to registers.
//
// Failure Is a Value:
// Engine and transform steps return false instead of erroring. A
// failed step leaves the value registers untouched (flag and delta
// side effects excepted, matching the step contracts) and the run
// continues.
//
// Evaluation/Propagation Split:
// Pattern detection and ratio triggers are read-only. They may latch
// the pending-transform flag but never write upsilon, beta, or kappa.
package engine
