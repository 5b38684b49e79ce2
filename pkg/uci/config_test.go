package uci

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.NumReqSurveys != DefaultNumReqSurveys {
		t.Fatalf("NumReqSurveys = %d, want default %d", cfg.NumReqSurveys, DefaultNumReqSurveys)
	}
	if cfg.Interface != "wlan0" {
		t.Fatalf("Interface = %q, want wlan0", cfg.Interface)
	}
}

func TestLoadConfigParsesACSSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acsd")
	content := `
config acs 'main'
	option interface 'radio0'
	option num_req_surveys '3'
	option roc_duration_ms '150'
	option log_level 'debug'
	option channels '1 6 11'
	option disabled_channels '11'

config api 'main'
	option enable '1'
	option port '9090'

config mqtt 'main'
	option enable '1'
	option broker_url 'tcp://broker:1883'
	option topic 'acsd/test'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Interface != "radio0" {
		t.Fatalf("Interface = %q, want radio0", cfg.Interface)
	}
	if cfg.NumReqSurveys != 3 {
		t.Fatalf("NumReqSurveys = %d, want 3", cfg.NumReqSurveys)
	}
	if cfg.ROCDurationMS != 150 {
		t.Fatalf("ROCDurationMS = %d, want 150", cfg.ROCDurationMS)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.APIListener || cfg.APIPort != 9090 {
		t.Fatalf("api config = %v/%d, want enabled/9090", cfg.APIListener, cfg.APIPort)
	}
	if !cfg.MQTTEnabled || cfg.MQTTBrokerURL != "tcp://broker:1883" || cfg.MQTTTopic != "acsd/test" {
		t.Fatalf("mqtt config = %+v", cfg)
	}
	if len(cfg.Channels) != 3 || cfg.Channels[0] != 1 || cfg.Channels[2] != 11 {
		t.Fatalf("Channels = %v, want [1 6 11]", cfg.Channels)
	}
	if len(cfg.DisabledChannels) != 1 || cfg.DisabledChannels[0] != 11 {
		t.Fatalf("DisabledChannels = %v, want [11]", cfg.DisabledChannels)
	}
}

func TestLoadConfigRejectsInvalidNumReqSurveys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acsd")
	content := "config acs 'main'\n\toption num_req_surveys '0'\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for num_req_surveys = 0")
	}
}
