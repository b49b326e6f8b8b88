// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/mia-platform/pdm/internal/destination/writer"
)

func TestCmds(t *testing.T) {
	t.Parallel()

	missingPath := filepath.Join("testdata", "missing")
	testCases := map[string]struct {
		cmd                  *cobra.Command
		args                 []string
		expectedError        error
		expectedErrorMessage string
		expectedUsage        bool
	}{
		"toggle command with no arguments returns no error and print usage": {
			cmd:           ToggleCmd(),
			args:          []string{},
			expectedUsage: true,
		},
		"delete command with only the backend returns no error and print usage": {
			cmd:           DeleteCmd(),
			args:          []string{"plugin"},
			expectedUsage: true,
		},
		"toggle command with invalid backend return error and usage": {
			cmd:                  ToggleCmd(),
			args:                 []string{"invalid", "1"},
			expectedUsage:        true,
			expectedError:        errInvalidBackend,
			expectedErrorMessage: errInvalidBackend.Error() + ": invalid\n",
		},
		"delete command with invalid backend return error and usage": {
			cmd:                  DeleteCmd(),
			args:                 []string{"Invalid", "1"},
			expectedUsage:        true,
			expectedError:        errInvalidBackend,
			expectedErrorMessage: errInvalidBackend.Error() + ": invalid\n",
		},
		"list command with unknown output return error no usage": {
			cmd:                  ListCmd(),
			args:                 []string{"--" + outputFlagName, "xml"},
			expectedError:        writer.ErrUnknownFormat,
			expectedErrorMessage: writer.ErrUnknownFormat.Error() + ": xml\n",
		},
		"list command missing access file, return error no usage": {
			cmd:                  ListCmd(),
			args:                 []string{"--" + accessFileFlagName, missingPath},
			expectedError:        syscall.ENOENT,
			expectedErrorMessage: fmt.Sprintf("open %s: %s\n", missingPath, syscall.ENOENT),
		},
		"toggle command missing access file, return error no usage": {
			cmd:                  ToggleCmd(),
			args:                 []string{"plugin", "1", "--" + accessFileFlagName, missingPath},
			expectedError:        syscall.ENOENT,
			expectedErrorMessage: fmt.Sprintf("open %s: %s\n", missingPath, syscall.ENOENT),
		},
		"serve command with arguments return error and usage": {
			cmd:                  ServeCmd(),
			args:                 []string{"extra"},
			expectedUsage:        true,
			expectedErrorMessage: "unknown command \"extra\" for \"serve\"\n",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			errBuffer := new(bytes.Buffer)
			outBuffer := new(bytes.Buffer)
			test.cmd.SetOut(outBuffer)
			test.cmd.SetErr(errBuffer)
			test.cmd.SetUsageTemplate("usage string")
			test.cmd.SetArgs(test.args)

			err := test.cmd.ExecuteContext(t.Context())
			if test.expectedErrorMessage != "" {
				assert.Error(t, err)
				assert.Equal(t, test.expectedErrorMessage, errBuffer.String())
				if test.expectedError != nil {
					assert.ErrorIs(t, err, test.expectedError)
				}
			} else {
				assert.NoError(t, err)
				assert.Empty(t, errBuffer)
			}

			if test.expectedUsage {
				assert.Equal(t, "usage string", outBuffer.String())
			} else {
				assert.Empty(t, outBuffer)
			}
		})
	}
}
