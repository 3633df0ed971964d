// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.5.20
//

package goik

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the solver
var (
	// ErrNotReady is returned when results are requested from a solver that
	// has not completed any solve yet, or Track is called before Assemble.
	ErrNotReady = errors.New("solver has no solution yet")

	// ErrNotConverged is returned (wrapped) when a solve hits its iteration
	// or damping limit before reaching the requested accuracy. The best pose
	// found is still written back to the caller's state, so the caller may
	// treat this as a warning.
	ErrNotConverged = errors.New("solve did not reach the requested accuracy")
)

// BindingError reports an observable name that has no corresponding quantity
// in the kinematic model. It is fatal at solver construction.
type BindingError struct {
	Name string // Observable name that failed to bind
	Kind string // "marker" or "coordinate"
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s %q does not exist in the model", e.Kind, e.Name)
}

// InvalidArgumentError reports a malformed caller argument such as a
// non-positive accuracy or a wrong-length weight vector. No solver state is
// mutated when it is returned.
type InvalidArgumentError struct {
	Arg    string // Argument name
	Reason string // What was wrong with it
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}
