// Package user resolves the name the CLI signs board activity with
package user

import (
	"os"
	"os/user"
	"strings"

	"github.com/thenoetrevino/tablero/internal/models"
)

// AuthorEnv overrides the OS account name for alerts and comments
const AuthorEnv = "TABLERO_AUTHOR"

// DisplayName returns the author name to attach to board activity.
// It tries, in order:
// 1. the explicit override (e.g. an --author flag)
// 2. TABLERO_AUTHOR
// 3. the OS account's full name, then its username
// 4. the USER environment variable
// 5. models.AnonymousAuthor
func DisplayName(override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv(AuthorEnv)); name != "" {
		return name
	}

	if current, err := user.Current(); err == nil {
		// GECOS may carry extra comma separated fields
		if full, _, _ := strings.Cut(current.Name, ","); strings.TrimSpace(full) != "" {
			return strings.TrimSpace(full)
		}
		if current.Username != "" {
			return current.Username
		}
	}

	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return models.AnonymousAuthor
}
