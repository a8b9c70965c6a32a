// Package e2e holds browser tests that drive the full server with Playwright
// against an in-process fake of the remote student API. They are skipped with
// -short and need the Playwright browsers installed.
package e2e
