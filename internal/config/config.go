// Package config wraps Viper so components receive a scoped, read-only view
// of process configuration instead of reading globals.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// ViperConfig is a scoped view over a Viper instance.
type ViperConfig struct {
	v *viper.Viper
}

// New creates a Config backed by the given Viper instance.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

// Unmarshal decodes the scoped keys into target using mapstructure tags.
func (c *ViperConfig) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}

func (c *ViperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *ViperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *ViperConfig) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

func (c *ViperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *ViperConfig) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

func (c *ViperConfig) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Sub returns the config rooted at key. A missing key yields an empty config,
// never nil.
//
// Values bound only through environment variables are not visible to
// viper.Sub, so the subtree is rebuilt from AllSettings of the parent.
func (c *ViperConfig) Sub(key string) *ViperConfig {
	sub := viper.New()
	if m, ok := c.v.Get(key).(map[string]any); ok {
		for k := range m {
			sub.Set(k, c.v.Get(key+"."+k))
		}
	}
	return New(sub)
}

// Viper returns the underlying Viper instance.
func (c *ViperConfig) Viper() *viper.Viper {
	return c.v
}
