package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/snap/pkg/fsutil"
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys. Each is also read from the environment with the SNAP_ prefix
// and dots replaced by underscores, e.g. SNAP_LOG_LEVEL.
const (
	keyLogLevel   = "log.level"
	keyLogFormat  = "log.format"
	keyAuthor     = "author"
	keySigningKey = "signing.key"
)

// envConfigFile names an explicit user settings file.
const envConfigFile = "SNAP_CONFIG"

// loadSettings layers flags, SNAP_* environment variables and the optional
// user settings file into v.
func loadSettings(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix("SNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := bindFlag(v, keyLogLevel, flags, "log-level"); err != nil {
		return err
	}
	if err := bindFlag(v, keyLogFormat, flags, "log-format"); err != nil {
		return err
	}

	path, err := userSettingsPath()
	if err != nil || path == "" {
		// No home or config dir: run on flags and environment alone.
		return nil
	}
	ok, err := fsutil.Exists(path)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if !ok {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("settings: read %s: %w", path, err)
	}
	return nil
}

func bindFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) error {
	f := flags.Lookup(name)
	if f == nil {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("settings: bind --%s: %w", name, err)
	}
	return nil
}

// userSettingsPath returns $SNAP_CONFIG, or snap/config.toml under the user
// config directory ($XDG_CONFIG_HOME on Linux).
func userSettingsPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(envConfigFile)); p != "" {
		return expandUserPath(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snap", "config.toml"), nil
}

// resolveAuthor picks the commit author: --author, SNAP_AUTHOR, the user
// settings file, the repository's [user] name, $USER, then "unknown".
// The first three come through v once the flag is bound.
func resolveAuthor(v *viper.Viper, r *repo.Repo) string {
	if a := strings.TrimSpace(v.GetString(keyAuthor)); a != "" {
		return a
	}
	if r.Config != nil {
		if a := strings.TrimSpace(r.Config.User.Name); a != "" {
			return a
		}
	}
	if a := strings.TrimSpace(os.Getenv("USER")); a != "" {
		return a
	}
	return "unknown"
}
