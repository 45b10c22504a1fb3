package source

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned by a Source asked for devices without a valid session.
var ErrNotLoggedIn = errors.New("fleet session not logged in")

type Source interface {
	Login(ctx context.Context) (bool, error)
	Devices(ctx context.Context) ([]Device, error)
}

// Device is a fleet member as the inventory reports it. IPAddress holds zero or
// more addresses separated by whitespace.
type Device struct {
	UUID      string
	IPAddress string
}
