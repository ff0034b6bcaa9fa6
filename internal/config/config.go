package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
	Gateway GatewayConfig `yaml:"gateway"`
	STT     STTConfig     `yaml:"stt"`
	TTS     TTSConfig     `yaml:"tts"`
	Speaker SpeakerConfig `yaml:"speaker"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        int    `yaml:"port"`
	BindAddress string `yaml:"bind_address"`
}

// MongoConfig contains persistent store configuration. An empty URI selects
// the in-memory repositories.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisConfig contains the shared cache/pub-sub bus configuration
type RedisConfig struct {
	URL string `yaml:"url"`
}

// JWTConfig contains token issuance configuration
type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

// GatewayConfig contains the streaming gateway knobs. RingCapacity bounds how
// much audio a session retains; FillThreshold decides how much buffered audio
// triggers a transcription pass. The two are deliberately independent.
type GatewayConfig struct {
	RingCapacity  int `yaml:"ring_capacity"`
	FillThreshold int `yaml:"fill_threshold"`
}

// STTConfig contains transcription adapter configuration
type STTConfig struct {
	Language      string        `yaml:"language"`
	SampleRate    int           `yaml:"sample_rate"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	UseMock       bool          `yaml:"use_mock"`
}

// TTSConfig contains speech synthesis configuration
type TTSConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	UseMock bool   `yaml:"use_mock"`
}

// SpeakerConfig contains speaker identification configuration
type SpeakerConfig struct {
	Endpoint  string  `yaml:"endpoint"`
	Threshold float64 `yaml:"threshold"`
	UseMock   bool    `yaml:"use_mock"`
}

// Default returns a configuration with every knob at its default value.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, BindAddress: "0.0.0.0"},
		Mongo:   MongoConfig{URI: "", Database: "voiceflow"},
		Redis:   RedisConfig{URL: "redis://localhost:6379/0"},
		JWT:     JWTConfig{Secret: "change-me", ExpiresIn: time.Hour},
		Gateway: GatewayConfig{RingCapacity: 50, FillThreshold: 10},
		STT: STTConfig{
			Language:      "en-US",
			SampleRate:    16000,
			MaxConcurrent: 4,
			Timeout:       15 * time.Second,
			UseMock:       true,
		},
		TTS:     TTSConfig{UseMock: true},
		Speaker: SpeakerConfig{Threshold: 0.75, UseMock: true},
	}
}

// Load reads the optional YAML config file, then applies environment
// overrides on top of defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is a development convenience, absence is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.JWT.ExpiresIn = d
		}
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.TTS.APIKey = v
		c.TTS.UseMock = false
	}
	if v := os.Getenv("SPEAKER_ENDPOINT"); v != "" {
		c.Speaker.Endpoint = v
		c.Speaker.UseMock = false
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.STT.UseMock = false
	}
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis url cannot be empty")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret cannot be empty")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("jwt expires_in must be positive, got %s", c.JWT.ExpiresIn)
	}
	if c.Gateway.RingCapacity < 1 {
		return fmt.Errorf("gateway ring_capacity must be at least 1, got %d", c.Gateway.RingCapacity)
	}
	if c.Gateway.FillThreshold < 1 {
		return fmt.Errorf("gateway fill_threshold must be at least 1, got %d", c.Gateway.FillThreshold)
	}
	if c.Gateway.FillThreshold > c.Gateway.RingCapacity {
		return fmt.Errorf("gateway fill_threshold (%d) cannot exceed ring_capacity (%d)",
			c.Gateway.FillThreshold, c.Gateway.RingCapacity)
	}
	if c.STT.SampleRate < 8000 || c.STT.SampleRate > 48000 {
		return fmt.Errorf("stt sample_rate must be between 8000 and 48000, got %d", c.STT.SampleRate)
	}
	if c.STT.MaxConcurrent < 1 {
		return fmt.Errorf("stt max_concurrent must be at least 1, got %d", c.STT.MaxConcurrent)
	}
	if c.STT.Timeout <= 0 {
		return fmt.Errorf("stt timeout must be positive, got %s", c.STT.Timeout)
	}
	if c.Speaker.Threshold <= 0 || c.Speaker.Threshold > 1 {
		return fmt.Errorf("speaker threshold must be in (0,1], got %f", c.Speaker.Threshold)
	}
	return nil
}
