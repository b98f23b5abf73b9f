// Package parsers provides parsers for importing family datasets from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// Record kinds understood by the importer.
const (
	KindPerson         = "person"
	KindChild          = "child"
	KindMarriage       = "marriage"
	KindDivorce        = "divorce"
	KindMedia          = "media"
	KindTag            = "tag"
	KindAppears        = "appears"
	KindAttribute      = "attribute"
	KindMediaAttribute = "media_attribute"
	KindNote           = "note"
	KindReference      = "reference"
)

// RawRecord is one dataset line before validation.
//
// Person records declare a file-local key in Subject and the name in Value.
// Other records refer to persons by that key and to media by file location:
//
//	child:           Subject parent key, Object child key
//	marriage/divorce: Subject and Object person keys
//	media:           Subject file location
//	tag:             Subject file location, Value tag
//	appears:         Subject file location, Object person key
//	attribute:       Subject person key, Key, Value
//	media_attribute: Subject file location, Key, Value
//	note/reference:  Subject person key, Value text
type RawRecord struct {
	Kind    string `json:"kind" validate:"required,oneof=person child marriage divorce media tag appears attribute media_attribute note reference"`
	Subject string `json:"subject" validate:"required"`
	Object  string `json:"object,omitempty"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
	LineNum int    `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing records from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawRecord, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
