// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/pdm/internal/destination"
)

var testDestinations = []destination.Destination{
	{
		Backend:   destination.BackendHogFunction,
		ID:        "42",
		Name:      "Slack alerts",
		Enabled:   true,
		Interval:  "realtime",
		UpdatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	},
	{
		Backend:  destination.BackendBatchExport,
		ID:       "be1",
		Name:     "Warehouse",
		Interval: "hour",
	},
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	require.NoError(t, New(buffer, FormatText).WriteList(testDestinations))

	expectedOutput := `BACKEND        ID    NAME           ENABLED   FREQUENCY   LAST UPDATED
hog_function   42    Slack alerts   true      realtime    2024-06-01T12:00:00Z
batch_export   be1   Warehouse      false     hour        -
`
	assert.Equal(t, expectedOutput, buffer.String())
}

func TestWriteStructured(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		format    Format
		unmarshal func([]byte, any) error
	}{
		"json": {format: FormatJSON, unmarshal: json.Unmarshal},
		"yaml": {format: FormatYAML, unmarshal: yaml.Unmarshal},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buffer := new(bytes.Buffer)
			require.NoError(t, New(buffer, test.format).WriteList(testDestinations))

			var decoded []destination.Destination
			require.NoError(t, test.unmarshal(buffer.Bytes(), &decoded))
			assert.Equal(t, testDestinations, decoded)
		})
	}
}

func TestWriteEmptyList(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	require.NoError(t, New(buffer, FormatJSON).WriteList(nil))
	assert.Equal(t, "[]\n", buffer.String())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		value          string
		expectedFormat Format
		expectedErr    error
	}{
		"empty is text":    {value: "", expectedFormat: FormatText},
		"json":             {value: "json", expectedFormat: FormatJSON},
		"case insensitive": {value: "YAML", expectedFormat: FormatYAML},
		"unknown":          {value: "xml", expectedErr: ErrUnknownFormat},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			format, err := ParseFormat(test.value)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expectedFormat, format)
		})
	}
}
