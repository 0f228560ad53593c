// Package catalog retrieves the candidate entity universe from the graph
// store, either by pattern filters or by whitelisting against a canonical
// taxonomy document.
package catalog
