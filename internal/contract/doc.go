// Package contract defines the declarative test-case descriptor (the
// "contract"), its JSON serialization, and the filesystem-backed store that
// holds one contract per file.
//
// A contract is authored once, validated against the JSON schema of its
// declared schema_version, and only dispatched to the execution engine when
// it is at the current schema version. Contracts at older versions are
// quarantined by the store until the migrator rewrites them.
//
// Serialization is byte-stable: struct fields marshal in schema key order,
// heterogeneous test_data entries marshal with sorted keys, and every file
// ends with a trailing newline. Saving the same contract twice produces
// identical bytes, which the migrator relies on for its idempotence check.
package contract
