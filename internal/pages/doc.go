// Package pages provides capability-oriented views of the storefront. Each
// view owns its URL, its selector vocabulary and a set of high-level
// actions; raw selectors never leave this package.
//
// Views raise typed failures (PageError) with a classification the engine
// converts into run outcomes. A view never retries; retry policy lives with
// the contract, not with the page.
package pages
