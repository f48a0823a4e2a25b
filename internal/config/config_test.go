package config

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestServerPortOrDefault(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ReaderConfig
		want int
	}{
		{"nil config", nil, 8080},
		{"unset port", &ReaderConfig{}, 8080},
		{"configured port", &ReaderConfig{ServerPort: Ptr(9090)}, 9090},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ServerPortOrDefault(); got != tt.want {
				t.Errorf("ServerPortOrDefault() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderConfig_Merge(t *testing.T) {
	cfg := &ReaderConfig{
		JavaPath:   Ptr("/usr/bin/java"),
		ServerPort: Ptr(8081),
		Width:      Ptr(800.0),
	}
	patch := &ReaderConfig{
		ServerPort: Ptr(9090),
		Debug:      Ptr(true),
	}

	cfg.Merge(patch)

	if cfg.ConfiguredJavaPath() != "/usr/bin/java" {
		t.Errorf("Expected untouched javaPath, got %q", cfg.ConfiguredJavaPath())
	}
	if cfg.ServerPortOrDefault() != 9090 {
		t.Errorf("Expected patched port 9090, got %d", cfg.ServerPortOrDefault())
	}
	if !cfg.DebugEnabled() {
		t.Error("Expected debug to be patched on")
	}
	if cfg.Width == nil || *cfg.Width != 800 {
		t.Error("Expected width to be preserved")
	}

	*patch.ServerPort = 1
	if cfg.ServerPortOrDefault() != 9090 {
		t.Error("Merge must copy values, not alias the patch")
	}
}

func TestReaderConfig_Clone(t *testing.T) {
	settings := NewServerSettings()
	settings.Set("reader.app.secure", true)
	cfg := &ReaderConfig{ServerPort: Ptr(9000), ServerConfig: settings}

	clone := cfg.Clone()
	*clone.ServerPort = 1
	clone.ServerConfig.Set("reader.app.secure", false)

	if *cfg.ServerPort != 9000 {
		t.Error("Clone shares ServerPort")
	}
	if v, _ := cfg.ServerConfig.Get("reader.app.secure"); v != true {
		t.Error("Clone shares ServerConfig")
	}
}

func TestReaderConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *ReaderConfig
		errorMsg string
	}{
		{"empty config is valid", &ReaderConfig{}, ""},
		{"valid port", &ReaderConfig{ServerPort: Ptr(8080)}, ""},
		{"zero port", &ReaderConfig{ServerPort: Ptr(0)}, "serverPort must be between 1 and 65535"},
		{"port too large", &ReaderConfig{ServerPort: Ptr(70000)}, "serverPort must be between 1 and 65535"},
		{"negative width", &ReaderConfig{Width: Ptr(-1.0)}, "width must be positive"},
		{"zero height", &ReaderConfig{Height: Ptr(0.0)}, "height must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error message to contain %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvJavaPath, "/opt/jdk/bin/java")
	t.Setenv(EnvServerPort, "9191")
	t.Setenv(EnvDebug, "yes")
	t.Setenv(EnvWindowURL, "https://x.test/")

	cfg := &ReaderConfig{ServerPort: Ptr(8080)}
	cfg.LoadFromEnvironment()

	if cfg.ConfiguredJavaPath() != "/opt/jdk/bin/java" {
		t.Errorf("javaPath = %q", cfg.ConfiguredJavaPath())
	}
	if cfg.ServerPortOrDefault() != 9191 {
		t.Errorf("serverPort = %d", cfg.ServerPortOrDefault())
	}
	if !cfg.DebugEnabled() {
		t.Error("Expected debug from environment")
	}
	if cfg.WindowURL == nil || *cfg.WindowURL != "https://x.test/" {
		t.Error("Expected windowUrl from environment")
	}
}

func TestLoadFromEnvironment_InvalidValuesIgnored(t *testing.T) {
	t.Setenv(EnvServerPort, "not-a-port")
	t.Setenv(EnvDebug, "maybe")

	cfg := &ReaderConfig{ServerPort: Ptr(8088)}
	cfg.LoadFromEnvironment()

	if cfg.ServerPortOrDefault() != 8088 {
		t.Errorf("Expected invalid port to be ignored, got %d", cfg.ServerPortOrDefault())
	}
	if cfg.Debug != nil {
		t.Error("Expected unrecognised boolean to be ignored")
	}
}

func TestReaderConfig_JSONPatchKeepsSettingsOrder(t *testing.T) {
	payload := `{"serverPort":9090,"serverConfig":{"reader.app.secure":true,"reader.app.inviteCode":"abc","reader.app.userLimit":15}}`

	var patch ReaderConfig
	if err := json.Unmarshal([]byte(payload), &patch); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []string{"reader.app.secure", "reader.app.inviteCode", "reader.app.userLimit"}
	got := patch.ServerConfig.Keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	out, err := json.Marshal(&patch)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"serverConfig":{"reader.app.secure":true,"reader.app.inviteCode":"abc","reader.app.userLimit":15}`) {
		t.Errorf("Expected ordered serverConfig in %s", out)
	}
}
