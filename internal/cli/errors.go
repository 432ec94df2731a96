package cli

import (
	"encoding/json"
	"errors"
	"fmt"
)

// outputErrorCommon normalizes error emission across commands, keeping json
// output machine readable.
func outputErrorCommon(globals *Globals, code, message string) error {
	if globals != nil && globals.Format == "json" {
		enc := json.NewEncoder(globals.Stderr)
		enc.Encode(map[string]string{"error": code, "message": message})
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
	}
	return errors.New(message)
}
