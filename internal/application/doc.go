// Package application wires the rate catalog, session store, API handlers and
// HTTP server together so the main package only deals with CLI parsing and
// process lifecycle.
package application
