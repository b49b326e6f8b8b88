// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/pdm/internal/destination"
)

// Format is an output encoding of the destination list.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat returns the Format named by value.
func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(value)); format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

// Writer prints destination lists.
type Writer struct {
	writer io.Writer
	format Format

	lock sync.Mutex
}

func New(w io.Writer, format Format) *Writer {
	return &Writer{
		writer: w,
		format: format,
	}
}

// WriteList prints destinations in the configured format.
func (w *Writer) WriteList(destinations []destination.Destination) error {
	if destinations == nil {
		destinations = []destination.Destination{}
	}

	builder := new(strings.Builder)
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(builder)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(destinations); err != nil {
			return err
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(builder)
		encoder.SetIndent(2)
		if err := encoder.Encode(destinations); err != nil {
			return err
		}
		if err := encoder.Close(); err != nil {
			return err
		}
	case FormatText, "":
		writeTable(builder, destinations)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, w.format)
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	_, err := fmt.Fprint(w.writer, builder.String())
	return err
}

func writeTable(out io.Writer, destinations []destination.Destination) {
	table := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(table, "BACKEND\tID\tNAME\tENABLED\tFREQUENCY\tLAST UPDATED")
	for _, d := range destinations {
		fmt.Fprintf(table, "%s\t%s\t%s\t%t\t%s\t%s\n", d.Backend, d.ID, d.Name, d.Enabled, d.Interval, updatedAt(d.UpdatedAt))
	}
	_ = table.Flush()
}

func updatedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
