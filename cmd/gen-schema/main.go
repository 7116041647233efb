// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Command gen-schema generates the JSON Schema files for the config file
// and the persisted session profile.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillpress/quill/internal/config"
	"github.com/quillpress/quill/internal/session"
)

var targets = []struct {
	file     string
	generate func() ([]byte, error)
}{
	{"config.schema.json", config.Schema},
	{"session-user.schema.json", session.GenerateProfileSchema},
}

func main() {
	if err := os.MkdirAll("schemas", 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	for _, target := range targets {
		schema, err := target.generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", target.file, err)
			os.Exit(1)
		}

		outPath := filepath.Join("schemas", target.file)
		if err := os.WriteFile(outPath, append(schema, '\n'), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", outPath)
	}
}
