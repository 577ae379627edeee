// Package resources holds files bundled into the binary.
package resources

import _ "embed"

// HotelCorpus is the default hotel FAQ corpus, one entry per line.
//
//go:embed hotel.txt
var HotelCorpus []byte
