package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

func checkOutputFormat(format string) error {
	if format != "json" && format != "yaml" {
		return eris.Errorf("unsupported output format %q (want json or yaml)", format)
	}
	return nil
}

// writeOutput renders v as "json" or "yaml".
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "write json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "write yaml")
		}
		return eris.Wrap(enc.Close(), "write yaml")
	default:
		return checkOutputFormat(format)
	}
}
