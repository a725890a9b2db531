package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avlev/pgtop/internal/db"
)

// RCFile is the per-user connection file: one connection per line,
// colon-separated as host:port:dbname:user:password.
const RCFile = ".pgcenterrc"

// ErrBadPermissions is returned when the rc file is readable by group or
// other; such files are ignored so stored passwords stay private.
var ErrBadPermissions = fmt.Errorf("%s has wrong permissions", RCFile)

// DefaultRCPath returns ~/.pgcenterrc.
func DefaultRCPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, RCFile), nil
}

// ReadRC parses the connection file at path. The file is consumed only
// when its permission bits exclude group and other entirely.
func ReadRC(path string) ([]db.Config, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Mode().Perm()&0o077 != 0 {
		return nil, ErrBadPermissions
	}

	// #nosec G304 - path comes from the user's home directory
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var configs []db.Config
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 5)
		cfg := db.Config{}
		for i, p := range parts {
			switch i {
			case 0:
				cfg.Host = p
			case 1:
				cfg.Port = p
			case 2:
				cfg.DBName = p
			case 3:
				cfg.User = p
			case 4:
				cfg.Password = p
			}
		}
		configs = append(configs, cfg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}
