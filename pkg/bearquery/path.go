package bearquery

import (
	"fmt"
	"os"
	"path/filepath"
)

// bearRelPath is where Bear keeps its database, relative to the home
// directory. The group-container segment is stable across Bear 2.x releases.
const bearRelPath = "Library/Group Containers/9K33E3U3T4.net.shinyfrog.bear/Application Data/database.sqlite"

// DefaultPath returns the standard location of Bear's database for the
// current user.
//
// Returns [ErrNoHomeDir] if the home directory cannot be determined.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoHomeDir, err)
	}

	return filepath.Join(home, filepath.FromSlash(bearRelPath)), nil
}
