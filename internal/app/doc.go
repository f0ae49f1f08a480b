// Package app wires the sync pipeline together with fx.
//
// Module provides the configuration, the SQLite store, the page navigator and
// every pass collaborator. Commands supply Overrides for their flags and call
// Run, which starts the graph, hands the pipeline to a callback and closes the
// store when the callback returns.
package app
