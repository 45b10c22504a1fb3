package reconcile

import "fmt"

// AuthenticationError means the fleet session could not be established.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "fleet login failed, check auth token"
	}
	return fmt.Sprintf("fleet login failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ProviderError is a failed call to the fleet or DNS provider while fetching.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
