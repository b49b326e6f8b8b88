// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	serveCmdUsage = "serve"
	serveCmdShort = "serve the destinations of the project over HTTP"
	serveCmdLong  = `Serve the destinations of the project over HTTP.
	All the destination backends are loaded in background when the server starts;
	the list can be requested while they are still loading and it will contain the
	destinations loaded so far.

	Toggle and delete intents are exposed as routes, deletions of plugins and hog
	functions can be undone within the undo window (UNDO_WINDOW).`

	serveCmdExample = `# Serve the destinations on port 8080
	HTTP_PORT=8080 pdm serve --access-file access.yaml`

	listCmdUsage = "list"
	listCmdShort = "list the destinations of the project"
	listCmdLong  = `List the destinations of the project.
	Destinations of every backend are listed together, enabled destinations first.
	If some backend cannot be loaded the destinations of the other backends are
	listed anyway and the command exits with an error.`

	listCmdExample = `# List only the enabled destinations as YAML
	pdm list --enabled-only -o yaml`

	toggleCmdUsage = "toggle BACKEND ID"
	toggleCmdShort = "enable or disable a destination"
	toggleCmdLong  = `Enable or disable a destination.
	Only plugin and batch export destinations can be toggled. Enabling a destination
	requires the data pipelines add-on.

	The available backends are:
	- plugin
	- batch_export`

	toggleCmdExample = `# Pause a batch export
	pdm toggle batch_export 018f0c4e-7c3a-7d1c-a3b0-2f4c8e1d9b71 --enabled=false`

	deleteCmdUsage = "delete BACKEND ID"
	deleteCmdShort = "delete a destination"
	deleteCmdLong  = `Delete a destination.
	Plugin and hog function deletions can be undone by pressing enter before the
	undo window expires. Batch export deletions are immediate.

	The available backends are:
	- plugin
	- batch_export
	- hog_function`

	deleteCmdExample = `# Delete a hog function
	pdm delete hog_function 0190a3d4-52c1-7000-8a0f-63d6c5a3f1e2`
)

// ServeCmd returns the "serve" cli command.
func ServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.toOptions()
			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ListCmd returns the "list" cli command.
func ListCmd() *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:     listCmdUsage,
		Short:   heredoc.Doc(listCmdShort),
		Long:    heredoc.Doc(listCmdLong),
		Example: heredoc.Doc(listCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ToggleCmd returns the "toggle" cli command.
func ToggleCmd() *cobra.Command {
	flags := &toggleFlags{}
	cmd := &cobra.Command{
		Use:     toggleCmdUsage,
		Short:   heredoc.Doc(toggleCmdShort),
		Long:    heredoc.Doc(toggleCmdLong),
		Example: heredoc.Doc(toggleCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.toOptions(cmd, args)
			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// DeleteCmd returns the "delete" cli command.
func DeleteCmd() *cobra.Command {
	flags := &deleteFlags{}
	cmd := &cobra.Command{
		Use:     deleteCmdUsage,
		Short:   heredoc.Doc(deleteCmdShort),
		Long:    heredoc.Doc(deleteCmdLong),
		Example: heredoc.Doc(deleteCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.toOptions(cmd, args)
			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
