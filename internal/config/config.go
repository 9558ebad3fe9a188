package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cyoa-maker/internal/sandbox"
	sharedLogger "cyoa-maker/shared/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8090"`

	// Directory bare project names are resolved against.
	ProjectsDir string `envconfig:"PROJECTS_DIR" default:"storys"`
	// Project opened at startup, optional.
	ProjectFile string `envconfig:"PROJECT_FILE"`

	ScriptTimeout         time.Duration `envconfig:"SCRIPT_TIMEOUT" default:"2s"`
	ScriptCallStackSize   int           `envconfig:"SCRIPT_CALL_STACK_SIZE" default:"200"`
	ScriptRegistryMaxSize int           `envconfig:"SCRIPT_REGISTRY_MAX_SIZE" default:"262144"`
	ScriptMaxStringLen    int           `envconfig:"SCRIPT_MAX_STRING_LEN" default:"1048576"`
	ScriptMaxMemory       int64         `envconfig:"SCRIPT_MAX_MEMORY" default:"268435456"`
	ScriptEnablePrint     bool          `envconfig:"SCRIPT_ENABLE_PRINT" default:"true"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// SandboxOptions converts the script settings into engine limits.
func (c *Config) SandboxOptions() sandbox.Options {
	return sandbox.Options{
		Timeout:         c.ScriptTimeout,
		CallStackSize:   c.ScriptCallStackSize,
		RegistryMaxSize: c.ScriptRegistryMaxSize,
		MaxStringLen:    c.ScriptMaxStringLen,
		MaxMemory:       c.ScriptMaxMemory,
		EnablePrint:     c.ScriptEnablePrint,
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := sharedLogger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if _, err := sharedLogger.ParseEncoding(c.LogEncoding); err != nil {
		return fmt.Errorf("LOG_ENCODING: %w", err)
	}
	if c.ScriptTimeout < 0 {
		return fmt.Errorf("SCRIPT_TIMEOUT must not be negative, got %s", c.ScriptTimeout)
	}
	if c.ScriptCallStackSize <= 0 {
		return fmt.Errorf("SCRIPT_CALL_STACK_SIZE must be positive, got %d", c.ScriptCallStackSize)
	}
	if c.ScriptRegistryMaxSize <= 0 {
		return fmt.Errorf("SCRIPT_REGISTRY_MAX_SIZE must be positive, got %d", c.ScriptRegistryMaxSize)
	}
	if c.ScriptMaxStringLen < 0 {
		return fmt.Errorf("SCRIPT_MAX_STRING_LEN must not be negative, got %d", c.ScriptMaxStringLen)
	}
	if c.ScriptMaxMemory < 0 {
		return fmt.Errorf("SCRIPT_MAX_MEMORY must not be negative, got %d", c.ScriptMaxMemory)
	}
	return nil
}

// LoadConfig loads an optional .env file and then the environment.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
