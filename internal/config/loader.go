package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the STT provider names Trunkline ships with.
// Used by [Validate] to warn about unrecognised names.
var ValidProviderNames = []string{"deepgram", "mock"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills in the defaults for fields left empty in the YAML.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Media.Path == "" {
		cfg.Media.Path = "/media"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	if cfg.Media.Path == "" || cfg.Media.Path[0] != '/' {
		errs = append(errs, fmt.Errorf("media.path %q must start with '/'", cfg.Media.Path))
	}

	if cfg.Transcode.SilenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("transcode.silence_threshold must not be negative, got %v", cfg.Transcode.SilenceThreshold))
	}

	if cfg.STT.Name != "" && !slices.Contains(ValidProviderNames, cfg.STT.Name) {
		slog.Warn("unknown stt provider name; if this is a custom provider, make sure it is registered",
			"name", cfg.STT.Name,
		)
	}
	if cfg.STT.Name == "deepgram" && cfg.STT.APIKey == "" {
		errs = append(errs, errors.New("stt.api_key is required for the deepgram provider"))
	}
	if cfg.STT.Name == "" {
		slog.Warn("no stt provider configured; transcoded audio will be discarded after classification")
	}

	return errors.Join(errs...)
}
