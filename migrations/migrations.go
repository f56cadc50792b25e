// Package migrations embeds the SurrealDB schema scripts.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.surql
var files embed.FS

// Scripts returns the contents of every .surql file ordered by name
func Scripts() ([]string, error) {
	names, err := fs.Glob(files, "*.surql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}
