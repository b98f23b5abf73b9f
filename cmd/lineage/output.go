package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

func validateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return fmt.Errorf("%w: invalid format: %s (valid: %s)",
			ports.ErrInvalidArgument, format, strings.Join(validFormats, ", "))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func personLabel(p entities.Person) string {
	return fmt.Sprintf("#%d %s", p.ID, p.Name)
}

func printPeople(people []entities.Person) {
	for _, p := range people {
		fmt.Printf("  %s\n", personLabel(p))
	}
}

func printAttributes(attrs []entities.Attribute) {
	for _, a := range attrs {
		fmt.Printf("  %-20s %s\n", a.Key+":", a.Value)
	}
}

func printMedia(files []entities.MediaFile) {
	for _, f := range files {
		fmt.Printf("  %s\n", f.Location)
	}
}

// parseAssignments turns key=value arguments into a map. The value may
// itself contain '='.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ports.ErrInvalidArgument, arg)
		}
		values[key] = value
	}
	return values, nil
}
