package build

import (
	"fmt"
	"os"
	"os/user"
)

// Actor identifies who performed a build.
type Actor struct {
	// Hostname is the machine name where the build ran.
	Hostname string
	// Username is the system user who triggered the build.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// DetectActor gathers host and user information for the build report.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
