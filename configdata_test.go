package colorkit

import (
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/colorkit/internal/config"
)

func TestDefaultConfigTOMLMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if _, err := toml.Decode(string(DefaultConfigTOML), &cfg); err != nil {
		t.Fatalf("embedded config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded config does not validate: %v", err)
	}
	if !reflect.DeepEqual(&cfg, config.DefaultConfig()) {
		t.Errorf("embedded config is stale, run go generate ./internal/config\n got %+v\nwant %+v", cfg, *config.DefaultConfig())
	}
}
