package chatproxy

import (
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultBaseURL is the assistant service host used when none is configured.
const DefaultBaseURL = "https://prod-1-data.ke.pinecone.io"

// Config holds the assistant service connection settings. It is built once
// at startup and passed to NewHandler; handlers never read the environment.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Name    string        `mapstructure:"name"` // assistant name in the request path
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns defaults for everything except the credential,
// which has none.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Name:    "phoenixville",
		Timeout: 10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig. APIKey is left alone.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// HasCredential reports whether an API key is configured.
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ChatURL returns the assistant chat endpoint, e.g.
// https://prod-1-data.ke.pinecone.io/assistants/phoenixville/chat.
func (c Config) ChatURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/assistants/" + url.PathEscape(c.Name) + "/chat"
}

// MarshalLogObject logs the config without the credential.
func (c Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("base_url", c.BaseURL)
	enc.AddString("name", c.Name)
	enc.AddDuration("timeout", c.Timeout)
	enc.AddBool("api_key_set", c.HasCredential())
	return nil
}
