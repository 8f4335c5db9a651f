// Package user wraps the account store behind the operations the portal
// needs: lookups, profile updates and role assignment.
package user

import "time"

type User struct {
	ID             string
	UserName       string
	Name           string
	Email          string
	Phone          string
	EmailConfirmed bool
	Active         bool
	CreatedAt      time.Time
}

// OperationError is one failure reported by the account store.
type OperationError struct {
	Code        string
	Description string
}

// Result is the outcome of an account store write.
type Result struct {
	Succeeded bool
	Errors    []OperationError
}

// Success is the result of a write that went through.
func Success() Result {
	return Result{Succeeded: true}
}

// Failed builds an unsuccessful result.
func Failed(errs ...OperationError) Result {
	return Result{Errors: errs}
}

// FirstError returns the leading error or a blank one.
func (r Result) FirstError() OperationError {
	if len(r.Errors) == 0 {
		return OperationError{}
	}
	return r.Errors[0]
}
