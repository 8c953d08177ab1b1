// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package xerrs implements a batch error accumulator, used where a whole
// extrinsic (a set of ticket proofs, a set of verdicts) must be validated
// atomically and the first failure should win without losing the context
// of how many other entries were even looked at.
package xerrs

import (
	"errors"
	"strings"
	"sync"
)

// Errs collects zero or more errors.
type Errs struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err if non-nil.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs) > 0
}

// First returns the first error added, or nil.
func (e *Errs) First() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

// Err returns nil, the sole error, or a combined error, matching
// wrappers.Errs's collapsing behavior.
func (e *Errs) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		msgs := make([]string, len(e.errs))
		for i, err := range e.errs {
			msgs[i] = err.Error()
		}
		return errors.New(strings.Join(msgs, "; "))
	}
}
