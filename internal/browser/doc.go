// Package browser owns the headless-browser plumbing: the Chrome allocator,
// isolated per-run browsing contexts, HTTP basic auth for protected staging
// environments, artifact capture, and the timeout vocabulary every wait in
// the harness uses.
//
// A Browser is created once per process from the configuration. Every run
// obtains its own Session, a browsing context with storage isolated from
// its peers, which is how the mass-order runner keeps concurrent checkouts
// from sharing cookies or carts.
package browser
