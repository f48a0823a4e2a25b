// Package paths resolves the directories and bundled files the shell works with.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName  = "reader"
	jarFileName = "reader.jar"
	configFile  = "config.yml"

	EnvHome = "READER_HOME"
	EnvJar  = "READER_JAR"
)

// Dirs holds the resolved locations
type Dirs struct {
	Home string // app home: config, server work dir
	Logs string
	Jar  string // bundled server jar
}

// ConfigFile returns the path of the persisted configuration
func (d Dirs) ConfigFile() string {
	return filepath.Join(d.Home, configFile)
}

// Resolve computes Dirs from the environment and the running executable
func Resolve() (Dirs, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Dirs{}, fmt.Errorf("locate user config dir: %w", err)
		}
		home = filepath.Join(base, appDirName)
	}

	jar := os.Getenv(EnvJar)
	if jar == "" {
		exe, err := os.Executable()
		if err != nil {
			return Dirs{}, fmt.Errorf("locate executable: %w", err)
		}
		jar = bundledJarPath(exe, runtime.GOOS)
	}

	return FromHome(home, jar), nil
}

// FromHome builds Dirs rooted at home
func FromHome(home, jar string) Dirs {
	return Dirs{
		Home: home,
		Logs: filepath.Join(home, "logs"),
		Jar:  jar,
	}
}

// bundledJarPath locates the jar shipped next to the executable. macOS app
// bundles keep resources in Contents/Resources.
func bundledJarPath(exe, goos string) string {
	dir := filepath.Dir(exe)
	if goos == "darwin" && filepath.Base(dir) == "MacOS" {
		return filepath.Join(filepath.Dir(dir), "Resources", jarFileName)
	}
	return filepath.Join(dir, "resources", jarFileName)
}

// Ensure creates the home and log directories
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Home, d.Logs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
