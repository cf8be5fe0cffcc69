// Package schemas embeds the JSON Schema files that describe the structured
// artifacts exchanged with the LLM: the FAB analysis, the keyword list, and
// the drafted ad variants.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the named schema content, e.g. "fab_analysis.schema.json".
func Read(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return string(data), nil
}

// Names lists the embedded schema files.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
