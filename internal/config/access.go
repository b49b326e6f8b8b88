// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/pdm/internal/destination"
)

var (
	// ErrParsing reports failures that occur while decoding access files.
	ErrParsing = errors.New("error parsing")
)

// Access is the identity and the permissions destinations are managed with.
type Access struct {
	Viewer      destination.Viewer `json:"viewer" yaml:"viewer"`
	Permissions Permissions        `json:"permissions" yaml:"permissions"`
}

// Permissions holds the access policy answers of the viewer. In an access
// file a permissions section grants only the permissions it sets to true;
// without the section every permission is granted.
type Permissions struct {
	// ConfigureDestinations allows toggling and deleting destinations.
	ConfigureDestinations bool `json:"configureDestinations" yaml:"configureDestinations"`
	// EnableNewDestinations is granted by the data pipelines add-on.
	EnableNewDestinations bool `json:"enableNewDestinations" yaml:"enableNewDestinations"`
}

// DefaultAccess is used when no access file is provided: a regular viewer with every permission.
func DefaultAccess() Access {
	return Access{
		Permissions: Permissions{
			ConfigureDestinations: true,
			EnableNewDestinations: true,
		},
	}
}

// CanConfigure implements the access policy of the dispatcher.
func (a Access) CanConfigure() bool {
	return a.Permissions.ConfigureDestinations
}

// CanEnableNewDestinations implements the access policy of the dispatcher.
func (a Access) CanEnableNewDestinations() bool {
	return a.Permissions.EnableNewDestinations
}

// accessFile is the on disk shape of Access.
type accessFile struct {
	Viewer      destination.Viewer `yaml:"viewer"`
	Permissions *Permissions       `yaml:"permissions"`
}

// NewAccessFromPath parses the YAML or JSON access file at path. An empty file
// returns DefaultAccess.
func NewAccessFromPath(path string) (Access, error) {
	file, err := os.Open(path)
	if err != nil {
		return Access{}, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var parsed accessFile
	if err := decoder.Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultAccess(), nil
		}
		return Access{}, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	access := DefaultAccess()
	access.Viewer = parsed.Viewer
	if parsed.Permissions != nil {
		access.Permissions = *parsed.Permissions
	}
	return access, nil
}
