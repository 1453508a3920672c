// Package logging provides the process-wide structured logger used by every
// harness subsystem. It wraps log/slog with a subsystem attribute so that log
// output from the contract store, the execution engine, the mass-order runner
// and the page layer can be filtered by origin.
//
// The logger is initialized exactly once from the CLI composition root via
// Init. Components never construct their own loggers; they call the
// package-level Debug/Info/Warn/Error functions with their subsystem name.
package logging
