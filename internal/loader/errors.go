// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package loader

// LoadError reports a failed fetch of a remote collection.
type LoadError struct {
	Resource string
	err      error
}

func (e *LoadError) Error() string {
	return "loading " + e.Resource + ": " + e.err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.err
}

func (e *LoadError) Is(target error) bool {
	le, ok := target.(*LoadError)
	if !ok {
		return false
	}

	return e.Resource == le.Resource && e.err.Error() == le.err.Error()
}
