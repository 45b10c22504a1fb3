package reconcile

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// NameLength is the length of a device's short identifier, which doubles as
// its DNS label.
const NameLength = 7

// ErrInvalidName is returned for identifiers that are not NameLength ASCII
// characters.
var ErrInvalidName = errors.New("invalid device name")

// Name is a validated short device identifier.
type Name string

// ParseName accepts a DNS record name as a short identifier. Lengths are
// counted in bytes, so names must be ASCII, as UUIDs and DNS labels are.
func ParseName(s string) (Name, error) {
	if !isASCII(s) {
		return "", fmt.Errorf("%w: %q is not ascii", ErrInvalidName, s)
	}
	if len(s) != NameLength {
		return "", fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidName, s, len(s), NameLength)
	}
	return Name(s), nil
}

// NameFromUUID truncates a device UUID to its short identifier.
func NameFromUUID(uuid string) (Name, error) {
	if !isASCII(uuid) {
		return "", fmt.Errorf("%w: uuid %q is not ascii", ErrInvalidName, uuid)
	}
	if len(uuid) < NameLength {
		return "", fmt.Errorf("%w: uuid %q shorter than %d", ErrInvalidName, uuid, NameLength)
	}
	return Name(uuid[:NameLength]), nil
}

func (n Name) String() string {
	return string(n)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
