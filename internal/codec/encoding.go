// Package codec is the single serialization path for snapshots. The writer
// and the exporter both go through Encode, so a re-rendered snapshot is
// byte-identical to what the original write produced.
package codec

import (
	"fmt"
	"strings"
)

// Encoding identifies a snapshot serialization format.
type Encoding string

const (
	JSON   Encoding = "json"
	JSONGz Encoding = "json_gz"
	CSV    Encoding = "csv"
	XLSX   Encoding = "xlsx"
)

// ParseEncoding converts a user-supplied format name to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "json":
		return JSON, nil
	case "json_gz", "json.gz":
		return JSONGz, nil
	case "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// Ext returns the filename extension for the encoding, including the dot.
func (e Encoding) Ext() string {
	switch e {
	case JSONGz:
		return ".json.gz"
	case CSV:
		return ".csv"
	case XLSX:
		return ".xlsx"
	default:
		return ".json"
	}
}

// Decodable reports whether a snapshot can be loaded back from this encoding.
// The tabular formats are export-only projections.
func (e Encoding) Decodable() bool {
	return e == JSON || e == JSONGz
}

// EncodingForFilename infers the encoding from a snapshot filename extension.
func EncodingForFilename(name string) (Encoding, error) {
	switch {
	case strings.HasSuffix(name, ".json.gz"):
		return JSONGz, nil
	case strings.HasSuffix(name, ".json"):
		return JSON, nil
	case strings.HasSuffix(name, ".csv"):
		return CSV, nil
	case strings.HasSuffix(name, ".xlsx"):
		return XLSX, nil
	}
	return "", fmt.Errorf("cannot infer encoding from filename: %q", name)
}
