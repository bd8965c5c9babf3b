package oci

import "fmt"

// AuthError means the local OCI configuration could not be loaded or the
// credentials in it were rejected. Retrying does not help; the operator
// has to fix the profile.
type AuthError struct {
	Profile string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("oci auth (profile %s): %v", e.Profile, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConnectivityError means an API call that the run cannot proceed
// without has failed. Callers treat it as fatal for the current phase.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("oci %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
