package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the triage client.
type Config struct {
	Backend  BackendConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Speech   SpeechConfig
	Storage  StorageConfig
	Flow     FlowConfig
	Log      LogConfig
}

type BackendConfig struct {
	BaseURL        string
	DemoMode       bool
	RequestTimeout time.Duration
	DemoLatency    time.Duration
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SpeechConfig struct {
	SilenceTimeout time.Duration
	InterimResults bool
}

type StorageConfig struct {
	Dir           string
	PublicBaseURL string
}

type FlowConfig struct {
	DefaultLanguage string
	SettleDelay     time.Duration
	FrameInterval   time.Duration
	LocalConfidence float64
}

type LogConfig struct {
	Level   string
	Console bool
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Backend: BackendConfig{
			BaseURL:        envOrDefault("SMARTIVR_API_BASE_URL", "http://localhost:8000"),
			DemoMode:       envOrDefaultBool("SMARTIVR_DEMO_MODE", false),
			RequestTimeout: time.Duration(envOrDefaultInt("SMARTIVR_REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,
			DemoLatency:    time.Duration(envOrDefaultInt("SMARTIVR_DEMO_LATENCY_MS", 2500)) * time.Millisecond,
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("SMARTIVR_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("SMARTIVR_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("SMARTIVR_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("SMARTIVR_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("SMARTIVR_CHANNELS", 1),
		},
		Speech: SpeechConfig{
			SilenceTimeout: time.Duration(envOrDefaultInt("SMARTIVR_SILENCE_TIMEOUT_MS", 8000)) * time.Millisecond,
			InterimResults: envOrDefaultBool("SMARTIVR_INTERIM_RESULTS", true),
		},
		Storage: StorageConfig{
			Dir:           envOrDefault("SMARTIVR_RECORDINGS_DIR", filepath.Join(home, ".local", "share", "smartivr", "recordings")),
			PublicBaseURL: envOrDefault("SMARTIVR_RECORDINGS_BASE_URL", "https://storage.local/recordings"),
		},
		Flow: FlowConfig{
			DefaultLanguage: envOrDefault("SMARTIVR_LANGUAGE", "en-US"),
			SettleDelay:     time.Duration(envOrDefaultInt("SMARTIVR_SETTLE_DELAY_MS", 500)) * time.Millisecond,
			FrameInterval:   time.Duration(envOrDefaultInt("SMARTIVR_FRAME_INTERVAL_MS", 33)) * time.Millisecond,
			LocalConfidence: envOrDefaultFloat("SMARTIVR_LOCAL_CONFIDENCE", 0.8),
		},
		Log: LogConfig{
			Level:   envOrDefault("SMARTIVR_LOG_LEVEL", "info"),
			Console: envOrDefaultBool("SMARTIVR_LOG_CONSOLE", true),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Backend.RequestTimeout <= 0 {
		cfg.Backend.RequestTimeout = 30 * time.Second
	}
	if cfg.Flow.LocalConfidence < 0 || cfg.Flow.LocalConfidence > 1 {
		cfg.Flow.LocalConfidence = 0.8
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
