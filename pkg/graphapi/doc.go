// Package graphapi is the HTTP client for the graph service's mutation API:
// entity merge, entity edit, and entity deletion, with outcome
// classification shared by the executor and the bulk deleter.
package graphapi
