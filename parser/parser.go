package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dhcgn/eml-to-pdf/model"
)

var ErrUnsupportedFormat = errors.New("unsupported message format")

// Format identifies the on-disk encoding of a message file. The set is
// closed; dispatch happens on the file extension.
type Format string

const (
	FormatEML Format = "eml"
	FormatMSG Format = "msg"
)

// DetectFormat maps a file path onto a supported format.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return FormatEML, true
	case ".msg":
		return FormatMSG, true
	}
	return "", false
}

// ParseFile normalizes the message file at path into a NormalizedMessage.
// A structural parse failure yields an error and no partial record; a
// missing or unparseable date yields a record with the zero Date instead.
func ParseFile(path string) (*model.NormalizedMessage, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	switch format {
	case FormatMSG:
		return parseMSG(path)
	default:
		return parseEML(path)
	}
}
