// Package config loads the engine's tunables from YAML, with an embedded
// default and an environment-variable override ladder, grounded on the
// teacher's upnp/config.go LoadConfig: try an explicit path, then an env
// var naming a file, then .ssdpd.yml in the working directory, then
// ~/.ssdpd.yml, then fall back to the embedded default. This package
// trades the teacher's freeform map[string]interface{} bag for a typed
// struct, since the engine's tunable set is fixed and small (SPEC_FULL.md
// §6 Configuration).
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

const envConfigFile = "SSDPD_CONFIG"
const envPrefix = "SSDPD_CONFIG__"
const dotfileName = ".ssdpd.yml"

// Config holds every tunable the engine reads at startup.
type Config struct {
	MulticastGroup        string `yaml:"multicast_group"`
	SSDPPort              int    `yaml:"ssdp_port"`
	ResponseDelayMs       int    `yaml:"response_delay_ms"`
	QueryPollIntervalMs   int    `yaml:"query_poll_interval_ms"`
	DefaultQueryTimeoutMs int    `yaml:"default_query_timeout_ms"`
	MaxChildren           int    `yaml:"max_children"`
	PacketBufferBytes     int    `yaml:"packet_buffer_bytes"`
}

// ResponseDelay is ResponseDelayMs as a time.Duration, for wiring
// straight into dispatch.Dispatcher.Delay.
func (c Config) ResponseDelay() time.Duration {
	return time.Duration(c.ResponseDelayMs) * time.Millisecond
}

// QueryPollInterval is QueryPollIntervalMs as a time.Duration.
func (c Config) QueryPollInterval() time.Duration {
	return time.Duration(c.QueryPollIntervalMs) * time.Millisecond
}

// DefaultQueryTimeout is DefaultQueryTimeoutMs as a time.Duration.
func (c Config) DefaultQueryTimeout() time.Duration {
	return time.Duration(c.DefaultQueryTimeoutMs) * time.Millisecond
}

// Load reads configuration from filename if non-empty, else from the file
// named by SSDPD_CONFIG, else .ssdpd.yml in the working directory, else
// ~/.ssdpd.yml, else falls back to the embedded default. Any
// SSDPD_CONFIG__FIELD environment variable overrides that field
// afterward, matching the teacher's file-then-env precedence.
func Load(filename string) (Config, error) {
	data, path := defaultYAML, ""

	candidates := []string{filename, os.Getenv(envConfigFile), dotfileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, dotfileName))
	}

	for _, file := range candidates {
		if file == "" {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if file == filename || file == os.Getenv(envConfigFile) {
				log.Warnf("ssdp/config: cannot read %s, falling back: %v", file, err)
			}
			continue
		}
		data, path = b, file
		break
	}

	if path == "" {
		log.Infof("ssdp/config: using embedded default configuration")
	} else {
		log.Infof("ssdp/config: loaded %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	fields := map[string]*int{
		"SSDP_PORT":                &cfg.SSDPPort,
		"RESPONSE_DELAY_MS":        &cfg.ResponseDelayMs,
		"QUERY_POLL_INTERVAL_MS":   &cfg.QueryPollIntervalMs,
		"DEFAULT_QUERY_TIMEOUT_MS": &cfg.DefaultQueryTimeoutMs,
		"MAX_CHILDREN":             &cfg.MaxChildren,
		"PACKET_BUFFER_BYTES":      &cfg.PacketBufferBytes,
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(env, envPrefix), "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, raw := parts[0], parts[1]
		if key == "MULTICAST_GROUP" {
			cfg.MulticastGroup = raw
			continue
		}
		dst, ok := fields[key]
		if !ok {
			log.Warnf("ssdp/config: unknown override %s%s", envPrefix, key)
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Warnf("ssdp/config: %s%s=%q is not an integer, ignoring", envPrefix, key, raw)
			continue
		}
		*dst = n
	}
}
