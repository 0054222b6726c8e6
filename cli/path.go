package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/tmplkit/pkg"
)

// baseConfig is the base name of the configuration file and the key of its
// top-level section.
const baseConfig = "config"

// configExt is the extension of the configuration file.
const configExt = ".yaml"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// pathEnv names the environment variable that lists additional search
// directories, separated by [os.PathListSeparator].
var pathEnv = pkg.EnvPrefix + "PATH"

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	if err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode); err != nil {
		return err
	}

	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}

// searchPath returns the directories that relative input names are resolved
// against: dirs in order, followed by the directories listed in $TMPLKIT_PATH.
// Entries that are not existing directories are dropped.
func searchPath(dirs []string) []string {
	delim := string(os.PathListSeparator)

	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pathEnv)),
		mung.WithDelim(delim),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	if list == "" {
		return nil
	}

	return strings.Split(list, delim)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
