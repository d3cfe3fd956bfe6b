// Package config provides the configuration schema, loader, and STT provider
// registry for the Trunkline media server.
package config

// LogLevel controls log verbosity for the Trunkline server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Trunkline.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Media     MediaConfig     `yaml:"media"`
	Transcode TranscodeConfig `yaml:"transcode"`
	STT       ProviderEntry   `yaml:"stt"`
	Stats     StatsConfig     `yaml:"stats"`
}

// ServerConfig holds network and logging settings for the Trunkline server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// MediaConfig holds settings for the carrier media-stream endpoint.
type MediaConfig struct {
	// Path is the URL path the carrier connects its media stream
	// WebSocket to. Default: "/media".
	Path string `yaml:"path"`

	// Continuity enables per-call carry-over of the trailing sample so
	// that upsampling interpolates across frame boundaries instead of
	// duplicating the last sample of every frame. Off by default.
	Continuity bool `yaml:"continuity"`

	// DropSilentFrames stops silent frames from being forwarded to the
	// speech engine. Transcoding and classification still happen; only
	// the (billed) STT delivery is skipped. Off by default.
	DropSilentFrames bool `yaml:"drop_silent_frames"`
}

// TranscodeConfig holds tuning knobs for the transcoding pipeline.
type TranscodeConfig struct {
	// SilenceThreshold is the RMS level below which a frame is classified
	// as silent, on the raw 16-bit sample scale. Zero selects the built-in
	// default (200). Tune per carrier when noise floors differ.
	SilenceThreshold float64 `yaml:"silence_threshold"`
}

// ProviderEntry selects and configures a named STT provider implementation.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g. "deepgram").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API, if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g. "nova-3").
	Model string `yaml:"model"`

	// Language is the BCP-47 recognition language hint (e.g. "en-US").
	Language string `yaml:"language"`
}

// StatsConfig configures persistence of per-call media statistics.
type StatsConfig struct {
	// PostgresDSN is the connection string for the statistics database.
	// Empty disables persistence; stats are then kept in memory only.
	PostgresDSN string `yaml:"postgres_dsn"`
}
