package instance

import "github.com/angelmondragon/medfinder-backend/pkg/env"

// GetID returns the identifier of the running process, preferring the
// platform-provided dyno name over the container hostname.
func GetID() string {
	return env.Get("local", "DYNO", "HOSTNAME")
}
