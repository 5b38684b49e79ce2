// Package uci loads acsd's configuration from an OpenWrt-style UCI config
// file (flat "config <type> <name>" / "option <key> <value>" text) and
// provides a live client for writing the chosen channel back to the
// wireless config at handoff time.
package uci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultNumReqSurveys  = 2
	DefaultROCDurationMS  = 110
	DefaultLogLevel       = "info"
	DefaultMetricsPort    = 9100
	DefaultAPIPort        = 8480
	DefaultMQTTBrokerURL  = "tcp://localhost:1883"
	DefaultMQTTTopic      = "acsd/decision"
	DefaultFallbackDBPath = "/tmp/acsd-fallback.db"
	DefaultAuditDBPath    = "/tmp/acsd-audit.sqlite"
)

// Config is acsd's full runtime configuration: the ACS engine's two knobs
// (spec §3, §6) plus the ambient daemon configuration (logging, listeners,
// telemetry, storage) carried the way the rest of this codebase's daemons
// are configured.
type Config struct {
	// Interface selection
	Interface string `json:"interface"`

	// ACS engine knobs (iface.conf in the spec's terms)
	NumReqSurveys int `json:"acs_num_req_surveys"`
	ROCDurationMS int `json:"acs_roc_duration_ms"`

	// Candidate channel list: the configuration loader's job of deciding
	// current_mode.channels before handing off to the core engine.
	Channels         []int `json:"channels"`
	DisabledChannels []int `json:"disabled_channels"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Control-plane HTTP API
	APIListener bool   `json:"api_listener"`
	APIPort     int    `json:"api_port"`
	APIAuthHash string `json:"api_auth_hash"` // bcrypt hash of the control secret

	// Prometheus metrics
	MetricsListener bool `json:"metrics_listener"`
	MetricsPort     int  `json:"metrics_port"`

	// MQTT decision telemetry
	MQTTEnabled  bool   `json:"mqtt_enabled"`
	MQTTBrokerURL string `json:"mqtt_broker_url"`
	MQTTTopic    string `json:"mqtt_topic"`
	MQTTClientID string `json:"mqtt_client_id"`
	MQTTUsername string `json:"mqtt_username"`
	MQTTPassword string `json:"mqtt_password"`

	// Fallback store (bbolt): last-known-good channel, consulted only by
	// bring-up, never by the ACS engine's own decision.
	FallbackDBPath string `json:"fallback_db_path"`

	// Decision audit trail (sqlite)
	AuditDBPath string `json:"audit_db_path"`
}

// LoadConfig loads acsd's configuration from a UCI file at path, falling
// back to defaults when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := cfg.parseUCI(path); err != nil {
		return nil, fmt.Errorf("failed to parse UCI config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	c.Interface = "wlan0"
	c.NumReqSurveys = DefaultNumReqSurveys
	c.ROCDurationMS = DefaultROCDurationMS
	c.Channels = []int{1, 6, 11}
	c.DisabledChannels = nil
	c.LogLevel = DefaultLogLevel
	c.LogFile = ""
	c.APIListener = true
	c.APIPort = DefaultAPIPort
	c.MetricsListener = true
	c.MetricsPort = DefaultMetricsPort
	c.MQTTEnabled = false
	c.MQTTBrokerURL = DefaultMQTTBrokerURL
	c.MQTTTopic = DefaultMQTTTopic
	c.MQTTClientID = "acsd"
	c.FallbackDBPath = DefaultFallbackDBPath
	c.AuditDBPath = DefaultAuditDBPath
}

// parseUCI implements a minimal flat UCI parser: "config <type> <name>"
// opens a section, "option <key> <value>" sets a key within it. Only the
// "acs", "api", "metrics", "mqtt" and "storage" section types are
// consulted; everything else is ignored, which keeps acsd tolerant of
// sharing a config file with other daemons.
func (c *Config) parseUCI(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var currentSectionType string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "config ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				currentSectionType = parts[1]
			}
			continue
		}

		if strings.HasPrefix(line, "option ") {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			optionName := fields[1]
			value := strings.Trim(strings.Join(fields[2:], " "), "'\"")
			c.parseOption(currentSectionType, optionName, value)
		}
	}

	return nil
}

func (c *Config) parseOption(sectionType, option, value string) {
	switch sectionType {
	case "acs":
		c.parseACSOption(option, value)
	case "api":
		c.parseAPIOption(option, value)
	case "metrics":
		c.parseMetricsOption(option, value)
	case "mqtt":
		c.parseMQTTOption(option, value)
	case "storage":
		c.parseStorageOption(option, value)
	}
}

func (c *Config) parseACSOption(option, value string) {
	switch option {
	case "interface":
		c.Interface = value
	case "num_req_surveys":
		if v, err := strconv.Atoi(value); err == nil {
			c.NumReqSurveys = v
		}
	case "roc_duration_ms":
		if v, err := strconv.Atoi(value); err == nil {
			c.ROCDurationMS = v
		}
	case "log_level":
		c.LogLevel = value
	case "log_file":
		c.LogFile = value
	case "channels":
		c.Channels = parseIntList(value)
	case "disabled_channels":
		c.DisabledChannels = parseIntList(value)
	}
}

// parseIntList splits a whitespace-separated UCI list option ("1 6 11")
// into integers, dropping any field that doesn't parse.
func parseIntList(value string) []int {
	fields := strings.Fields(value)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *Config) parseAPIOption(option, value string) {
	switch option {
	case "enable":
		c.APIListener = value == "1"
	case "port":
		if v, err := strconv.Atoi(value); err == nil {
			c.APIPort = v
		}
	case "auth_hash":
		c.APIAuthHash = value
	}
}

func (c *Config) parseMetricsOption(option, value string) {
	switch option {
	case "enable":
		c.MetricsListener = value == "1"
	case "port":
		if v, err := strconv.Atoi(value); err == nil {
			c.MetricsPort = v
		}
	}
}

func (c *Config) parseMQTTOption(option, value string) {
	switch option {
	case "enable":
		c.MQTTEnabled = value == "1"
	case "broker_url":
		c.MQTTBrokerURL = value
	case "topic":
		c.MQTTTopic = value
	case "client_id":
		c.MQTTClientID = value
	case "username":
		c.MQTTUsername = value
	case "password":
		c.MQTTPassword = value
	}
}

func (c *Config) parseStorageOption(option, value string) {
	switch option {
	case "fallback_db_path":
		c.FallbackDBPath = value
	case "audit_db_path":
		c.AuditDBPath = value
	}
}

func (c *Config) validate() error {
	if c.NumReqSurveys < 1 {
		return fmt.Errorf("acs.num_req_surveys must be >= 1, got %d", c.NumReqSurveys)
	}
	if c.ROCDurationMS < 1 {
		return fmt.Errorf("acs.roc_duration_ms must be positive, got %d", c.ROCDurationMS)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
