// Package config defines the propagation run configuration: engine and
// transform modes, accrual triggers, feature toggles, seeds, and bounds.
//
// A Config is plain data. Default() returns the baseline every loader
// and search starts from; Load/Parse apply a flat key/value YAML
// document over that baseline. Loading is tolerant of unknown keys and
// out-of-range mode codes (both are ignored) but strict about scalar
// seeds and bounds: a malformed rational or modulus fails the whole
// load before any caller-visible state changes.
//
// CanonicalDocument renders a Config back into the same key/value
// format with a fixed key order, so equal configs produce identical
// bytes. Fingerprints, stored runs, and search outputs all go through
// it.
package config
