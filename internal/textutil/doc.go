// Package textutil converts free-form text into strings that are safe to use
// as file and directory names.
//
// Tag values routinely contain characters that are illegal on at least one
// common filesystem ("AC/DC", "Vol. 1: Live"). SanitizeSegment maps them to a
// stable replacement so the same tags always yield the same path.
package textutil
