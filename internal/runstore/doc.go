// Package runstore provides SQLite-backed persistence for simulation
// runs.
//
// A stored run consists of:
//   - Catalog row: uuid, label, creation time, canonical config
//     document, config fingerprint, tick count
//   - Event records: one row per microtick mirroring the events table
//   - Value records: one row per microtick mirroring the values table
//
// Records are stored field for field as the emit layer renders them,
// with big-integer components as TEXT. That makes Verify a pure byte
// comparison: replay the stored canonical config and compare every
// fresh record against the stored one. Any divergence means the
// determinism contract was broken somewhere between the run that was
// stored and the binary doing the verifying.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cascade record deletion with the catalog row
//
// Run labels are normalized to NFC before storage so lookups are
// insensitive to Unicode composition differences.
package runstore
