package main

// Default values for CLI flags.
const (
	DefaultGenerations = 1
	DefaultAuditLimit  = 50
)

// Valid report output formats.
var validFormats = []string{"text", "json"}
