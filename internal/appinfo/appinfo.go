// Package appinfo reports build information about the running binary
package appinfo

import (
	"os"
	"runtime/debug"
)

// Version returns the application version. VERSION and APP_VERSION take
// precedence over the module version and VCS revision in the build info.
func Version() string {
	for _, key := range []string{"VERSION", "APP_VERSION"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "0.0.0-unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return "0.0.0-unknown"
}
