// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/pdm/internal/destination/writer"
)

const (
	accessFileFlagName  = "access-file"
	accessFileFlagShort = "a"
	accessFileFlagUsage = "Path to a YAML or JSON file describing the viewer and its permissions. Without it a regular viewer with every permission is used."

	outputFlagName  = "output"
	outputFlagShort = "o"
	outputFlagUsage = "Output format (possible values: text, json, yaml)"

	enabledOnlyFlagName  = "enabled-only"
	enabledOnlyFlagUsage = "If set, lists only the enabled destinations"

	enabledFlagName  = "enabled"
	enabledFlagUsage = "The state the destination is set to"
	defaultEnabled   = true
)

// commonFlags holds the flags shared by every command talking to the platform.
type commonFlags struct {
	accessFile string
}

// addFlags adds the cli flags to the cobra command.
func (f *commonFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.accessFile, accessFileFlagName, accessFileFlagShort, "", accessFileFlagUsage)
}

func (f *commonFlags) toOptions() options {
	return options{
		accessFile:   f.accessFile,
		remoteGetter: remoteFromEnv,
	}
}

// serveFlags holds the flags for the "serve" command.
type serveFlags struct {
	commonFlags
}

func (f *serveFlags) toOptions() *serveOptions {
	return &serveOptions{
		options:      f.commonFlags.toOptions(),
		serverGetter: serverFromEnv,
	}
}

// listFlags holds the flags for the "list" command.
type listFlags struct {
	commonFlags
	output      string
	enabledOnly bool
}

// addFlags adds the cli flags to the cobra command.
func (f *listFlags) addFlags(cmd *cobra.Command) {
	f.commonFlags.addFlags(cmd)
	cmd.Flags().StringVarP(&f.output, outputFlagName, outputFlagShort, string(writer.FormatText), outputFlagUsage)
	cmd.Flags().BoolVar(&f.enabledOnly, enabledOnlyFlagName, false, enabledOnlyFlagUsage)
}

// toOptions converts the list flags to listOptions.
func (f *listFlags) toOptions(cmd *cobra.Command) (*listOptions, error) {
	format, err := writer.ParseFormat(f.output)
	if err != nil {
		return nil, err
	}

	return &listOptions{
		options:     f.commonFlags.toOptions(),
		enabledOnly: f.enabledOnly,
		writer:      writer.New(cmd.OutOrStdout(), format),
		errOut:      cmd.ErrOrStderr(),
	}, nil
}

// toggleFlags holds the flags for the "toggle" command.
type toggleFlags struct {
	commonFlags
	enabled bool
}

// addFlags adds the cli flags to the cobra command.
func (f *toggleFlags) addFlags(cmd *cobra.Command) {
	f.commonFlags.addFlags(cmd)
	cmd.Flags().BoolVar(&f.enabled, enabledFlagName, defaultEnabled, enabledFlagUsage)
}

// toOptions converts the toggle flags to toggleOptions enriching it with the passed arguments.
func (f *toggleFlags) toOptions(cmd *cobra.Command, args []string) *toggleOptions {
	return &toggleOptions{
		targetOptions: targetOptions{options: f.commonFlags.toOptions(), args: normalizeArgs(args)},
		enabled:       f.enabled,
		out:           cmd.OutOrStdout(),
	}
}

// deleteFlags holds the flags for the "delete" command.
type deleteFlags struct {
	commonFlags
}

// toOptions converts the delete flags to deleteOptions enriching it with the passed arguments.
func (f *deleteFlags) toOptions(cmd *cobra.Command, args []string) *deleteOptions {
	return &deleteOptions{
		targetOptions: targetOptions{options: f.commonFlags.toOptions(), args: normalizeArgs(args)},
		in:            cmd.InOrStdin(),
		out:           cmd.OutOrStdout(),
	}
}

func normalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args))
	for idx, arg := range args {
		if idx == 0 {
			arg = strings.ToLower(arg)
		}
		normalized = append(normalized, arg)
	}
	return normalized
}
