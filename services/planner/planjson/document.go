package planjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJson Format = "json"
	FormatYaml Format = "yaml"
)

// FormatOfPath picks the document format from the file extension. Anything but .yaml/.yml is json.
func FormatOfPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYaml
	default:
		return FormatJson
	}
}

func decode(data []byte, format Format, out interface{}) error {
	switch format {
	case FormatYaml:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err := dec.Decode(out)
		if errors.Is(err, io.EOF) {
			// empty document
			return nil
		}
		return err
	case FormatJson:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(out)
	default:
		return kerror.Create("UnknownFormat", "document format must be json or yaml").With("format", format).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
}

func readDocument(path string) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", kerror.Wrap(err, "ReadFileError", "failed to read document", false).With("path", path).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return data, FormatOfPath(path), nil
}
