// Package utils provides small helper functions shared across graphmend.
//
// The central helper is NormalizeName, the pure normalization function that
// defines duplicate identity for the whole pipeline: two entities are
// duplicate candidates exactly when their normalized names are equal.
package utils
