package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates the service configuration.
type Config struct {
	Server ServerConfig
	Chat   ChatConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// ChatConfig describes conversation behavior.
type ChatConfig struct {
	// ReplyDelay is how long the simulated responder waits before its echo
	// is appended.
	ReplyDelay time.Duration
}

const defaultReplyDelayMS = 5000

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadChatConfig() (ChatConfig, error) {
	delayMS, err := parseOptionalIntEnv("REPLY_DELAY_MS")
	if err != nil {
		return ChatConfig{}, err
	}

	ms := defaultReplyDelayMS
	if delayMS != nil {
		if *delayMS < 0 {
			return ChatConfig{}, fmt.Errorf("REPLY_DELAY_MS must not be negative, got %d", *delayMS)
		}
		ms = *delayMS
	}

	return ChatConfig{ReplyDelay: time.Duration(ms) * time.Millisecond}, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
