package actions

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/constants"
)

// writeOutput marshals i to w as YAML or indented JSON.
// YAML keys follow the JSON struct tags.
func writeOutput(w io.Writer, format string, i interface{}) error {
	var b []byte
	var err error
	switch format {
	case constants.OutputFormatYaml:
		b, err = yaml.Marshal(i)
	case constants.OutputFormatJson:
		b, err = json.MarshalIndent(i, "", "  ")
		b = append(b, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return errors.Wrap(err, "unable to marshal output")
	}
	_, err = w.Write(b)
	return err
}
