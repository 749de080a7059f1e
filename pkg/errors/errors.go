package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyCart is returned when a checkout is submitted with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty, nothing to submit")

// ErrNotFound represents a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized represents an authentication failure
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Message
}

// ErrInvalidStateTransition is returned when the checkout flow is asked to move
// between two states that are not connected.
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrValidation carries per-field messages for one checkout step.
type ErrValidation struct {
	Step   string
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s validation failed: %s", e.Step, strings.Join(keys, ", "))
}

// ErrRemote wraps a failed call to the remote store API. It is always retryable.
type ErrRemote struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ErrRemote) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: remote returned status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrRemote) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may try the same operation again.
func (e *ErrRemote) Retryable() bool {
	return true
}
