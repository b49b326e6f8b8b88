// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/pdm/internal/config"
)

func TestCompletion(t *testing.T) {
	t.Parallel()
	testCases := map[string]struct {
		args               []string
		toComplete         string
		expectedCompletion []string
	}{
		"no args, complete all backends": {
			args: []string{},
			expectedCompletion: []string{
				"plugin\tPlugin destination",
				"batch_export\tBatch export",
				"hog_function\tHog function",
			},
		},
		"some args, no completions": {
			args: []string{"plugin"},
		},
		"no args, partial string, return filtered backends": {
			args:       []string{},
			toComplete: "b",
			expectedCompletion: []string{
				"batch_export\tBatch export",
			},
		},
		"no args, partial wrong string, return no backend": {
			args:       []string{},
			toComplete: "x",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			args, directive := validArgsFunc(nil, test.args, test.toComplete)
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
			assert.ElementsMatch(t, test.expectedCompletion, args)
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	genericErr := errors.New("generic error")
	testCases := map[string]struct {
		err            error
		expectedError  error
		expectedOutput string
		expectedErrOut string
	}{
		"missing arguments print usage and exit cleanly": {
			err:            errNoArguments,
			expectedOutput: "usage string",
		},
		"invalid backend print error and usage": {
			err:            errInvalidBackend,
			expectedError:  errInvalidBackend,
			expectedOutput: "usage string",
			expectedErrOut: errInvalidBackend.Error() + "\n",
		},
		"other errors are only printed": {
			err:            genericErr,
			expectedError:  genericErr,
			expectedErrOut: "generic error\n",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			outBuffer := new(bytes.Buffer)
			errBuffer := new(bytes.Buffer)
			cmd := &cobra.Command{Use: "test"}
			cmd.SetOut(outBuffer)
			cmd.SetErr(errBuffer)
			cmd.SetUsageTemplate("usage string")

			err := handleError(cmd, test.err)
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.expectedOutput, outBuffer.String())
			assert.Equal(t, test.expectedErrOut, errBuffer.String())
		})
	}
}

func TestLoadAccess(t *testing.T) {
	t.Parallel()

	access, err := loadAccess("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAccess(), access)

	access, err = loadAccess(filepath.Join("testdata", "readonly.yaml"))
	require.NoError(t, err)
	assert.False(t, access.CanConfigure())
	assert.Equal(t, 7, access.Viewer.ID)
}

func TestLoadSessionConfig(t *testing.T) {
	t.Setenv("UNDO_WINDOW", "250ms")
	t.Setenv("TELEMETRY_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := loadSessionConfig()
	require.NoError(t, err)
	assert.Equal(t, "250ms", cfg.UndoWindow.String())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Telemetry.Brokers)
	assert.Equal(t, "destination_events", cfg.Telemetry.Topic)

	t.Setenv("UNDO_WINDOW", "soon")
	_, err = loadSessionConfig()
	assert.ErrorIs(t, err, errSessionConfig)
}
