package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GoSlider/GoSlider/internal/asset"
)

func etcPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.Webserver.Session.ExpiryTime != 8*time.Hour {
		t.Errorf("Webserver.Session.ExpiryTime = %v, want 8h", cfg.Webserver.Session.ExpiryTime)
	}

	if cfg.DB.GormEngine != EngineSQLite {
		t.Errorf("DB.GormEngine = %q, want %q", cfg.DB.GormEngine, EngineSQLite)
	}

	if cfg.Log.File.ErrorLog != "error.log" {
		t.Errorf("Log.File.ErrorLog = %q, want error.log", cfg.Log.File.ErrorLog)
	}

	if cfg.Assets.Backend != "local" || cfg.Assets.Local.BaseURL != "/assets" {
		t.Errorf("unexpected assets config: %+v", cfg.Assets)
	}

	if !cfg.Auth.LocalDB.Enabled {
		t.Error("Auth.LocalDB.Enabled should be true")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: false,
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{
					Port: 0,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: true,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "",
				},
			},
			wantErr: true,
		},
		{
			name: "unknown gorm engine",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				DB:        DB{GormEngine: "oracle"},
			},
			wantErr: true,
		},
		{
			name: "s3 backend without bucket",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Assets:    Assets{Backend: "s3"},
			},
			wantErr: true,
		},
		{
			name: "s3 backend with bucket",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Assets:    Assets{Backend: "s3", S3: asset.S3Config{Bucket: "slides"}},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}}

	if err := validate(&cfg); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.Webserver.ShutDownTime != defaultShutDownTime {
		t.Errorf("ShutDownTime = %d, want %d", cfg.Webserver.ShutDownTime, defaultShutDownTime)
	}

	if cfg.DB.GormEngine != EngineMySQL {
		t.Errorf("GormEngine = %q, want %q", cfg.DB.GormEngine, EngineMySQL)
	}

	if cfg.Assets.Backend != "local" {
		t.Errorf("Assets.Backend = %q, want local", cfg.Assets.Backend)
	}

	if cfg.Metrics.Path != defaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, defaultMetricsPath)
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Test Override" {
		t.Errorf("Title = %v, want %v", cfg.Title, "Test Override")
	}

	if cfg.Webserver.Port != 9090 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 9090)
	}

	// untouched values survive the merge
	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should survive the JSON merge")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("ReadConfig() on an empty directory should fail")
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	tomlStr, err := DumpConfig(&cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if tomlStr == "" {
		t.Error("DumpConfig() returned empty string")
	}

	if !strings.Contains(tomlStr, "Test") {
		t.Error("DumpConfig() output should contain Title")
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		DB:      DB{Password: "secret"},
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if !strings.Contains(jsonStr, "Test") {
		t.Error("DumpConfigJSON() output should contain Title")
	}

	if strings.Contains(jsonStr, "secret") {
		t.Error("DumpConfigJSON() must not print the db password")
	}
}
