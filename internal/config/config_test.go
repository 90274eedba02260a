package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSub_ReadsNestedKeys(t *testing.T) {
	v := viper.New()
	v.Set("assistant.base_url", "https://example.test")
	v.Set("assistant.timeout", "3s")

	sub := New(v).Sub("assistant")
	if got := sub.GetString("base_url"); got != "https://example.test" {
		t.Errorf("base_url = %q, want %q", got, "https://example.test")
	}
	if got := sub.GetDuration("timeout"); got != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", got)
	}
}

func TestSub_MissingKeyIsEmpty(t *testing.T) {
	sub := New(nil).Sub("nope")
	if sub == nil {
		t.Fatal("Sub returned nil")
	}
	if sub.IsSet("anything") {
		t.Error("expected empty config")
	}
}

func TestUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("name", "phoenixville")
	v.Set("max_items", 20)

	var target struct {
		Name     string `mapstructure:"name"`
		MaxItems int    `mapstructure:"max_items"`
	}
	if err := New(v).Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if target.Name != "phoenixville" || target.MaxItems != 20 {
		t.Errorf("got %+v", target)
	}
}
