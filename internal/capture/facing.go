package capture

import (
	"github.com/pkg/errors"
)

// Facing selects the front ("user") or rear ("environment") camera.
type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

// ParseFacing converts s into a Facing.
func ParseFacing(s string) (Facing, error) {
	switch Facing(s) {
	case FacingUser, FacingEnvironment:
		return Facing(s), nil
	}
	return "", errors.Errorf("unknown facing mode %q", s)
}

// Toggle returns the opposite facing mode.
func (f Facing) Toggle() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// Mirrored reports whether output for this facing mode is flipped
// horizontally. Only the front camera is mirrored.
func (f Facing) Mirrored() bool {
	return f == FacingUser
}
