package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvJar, "/opt/reader/reader.jar")

	dirs, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if dirs.Home != home {
		t.Errorf("Home = %q, want %q", dirs.Home, home)
	}
	if dirs.Jar != "/opt/reader/reader.jar" {
		t.Errorf("Jar = %q", dirs.Jar)
	}
	if dirs.Logs != filepath.Join(home, "logs") {
		t.Errorf("Logs = %q", dirs.Logs)
	}
	if dirs.ConfigFile() != filepath.Join(home, "config.yml") {
		t.Errorf("ConfigFile() = %q", dirs.ConfigFile())
	}
}

func TestBundledJarPath(t *testing.T) {
	tests := []struct {
		name string
		exe  string
		goos string
		want string
	}{
		{
			name: "linux next to executable",
			exe:  filepath.Join("opt", "reader", "reader"),
			goos: "linux",
			want: filepath.Join("opt", "reader", "resources", "reader.jar"),
		},
		{
			name: "macOS bundle",
			exe:  filepath.Join("Reader.app", "Contents", "MacOS", "reader"),
			goos: "darwin",
			want: filepath.Join("Reader.app", "Contents", "Resources", "reader.jar"),
		},
		{
			name: "darwin outside a bundle",
			exe:  filepath.Join("build", "reader"),
			goos: "darwin",
			want: filepath.Join("build", "resources", "reader.jar"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bundledJarPath(tt.exe, tt.goos); got != tt.want {
				t.Errorf("bundledJarPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsure(t *testing.T) {
	dirs := FromHome(filepath.Join(t.TempDir(), "home"), "")
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	for _, dir := range []string{dirs.Home, dirs.Logs} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
}
