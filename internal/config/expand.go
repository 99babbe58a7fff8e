package config

import (
	"os"
	"path/filepath"
	"strings"
)

// envKeyReplacer maps nested keys to env names: gateway.host -> GATEWAY_HOST.
var envKeyReplacer = strings.NewReplacer(".", "_")

// ExpandPath expands $VAR and ${VAR} references, then a leading ~ for the
// current user. ~user forms are left alone, as is everything when the home
// directory is unknown.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
