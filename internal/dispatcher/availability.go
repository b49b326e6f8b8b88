// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package dispatcher

import (
	"github.com/mia-platform/pdm/internal/destination"
)

// Action describes whether an intent can be offered for a destination.
type Action struct {
	Label          string `json:"label" yaml:"label"`
	DisabledReason string `json:"disabledReason,omitempty" yaml:"disabledReason,omitempty"`
}

// Allowed reports whether the action has no disabled reason.
func (a Action) Allowed() bool {
	return a.DisabledReason == ""
}

// Availability lists the intents that can be offered for a destination.
type Availability struct {
	Toggle Action `json:"toggle" yaml:"toggle"`
	Delete Action `json:"delete" yaml:"delete"`
}

// Availability returns the actions the current access policy allows on dest.
func (d *Dispatcher) Availability(dest destination.Destination) Availability {
	return availability(d.access, dest)
}

func availability(access AccessPolicy, dest destination.Destination) Availability {
	toggle := Action{Label: "Pause destination"}
	if !dest.Enabled {
		toggle.Label = "Unpause destination"
	}

	switch {
	case !access.CanConfigure():
		toggle.DisabledReason = toggleDeniedMessage
	case !access.CanEnableNewDestinations() && !dest.Enabled:
		toggle.DisabledReason = addonRequiredReason
	case dest.Backend == destination.BackendHogFunction:
		toggle.DisabledReason = "Toggling is not supported for this destination"
	}

	remove := Action{Label: "Delete destination"}
	if !access.CanConfigure() {
		remove.DisabledReason = deleteDeniedMessage
	}

	return Availability{Toggle: toggle, Delete: remove}
}
