// Package migrate rewrites contract documents between schema revisions.
//
// Each transition is a pure function from an untyped document at the source
// version to a document at the next version; a full migration is the
// composition of adjacent steps. Migrations are idempotent on documents
// already at the target version, total on any document that validates at its
// source version, and never lose information: every field the target schema
// does not accept is either moved to its new home or documented as dropped.
//
// The store-level entry point takes a byte-exact backup of each file before
// rewriting it atomically, so a crashed migration never leaves a contract in
// a half-rewritten state.
package migrate
