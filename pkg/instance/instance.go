package instance

import (
	"os"
	"strings"
)

const envInstanceID = "SCANCART_INSTANCE_ID"

// GetID identifies this process in logs: SCANCART_INSTANCE_ID, then the
// platform dyno name, then the hostname.
func GetID() string {
	for _, key := range []string{envInstanceID, "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
