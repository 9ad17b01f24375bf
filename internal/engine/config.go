package engine

import (
	"github.com/megant/aktion/internal/compiler"
)

// Config holds the engine settings a host can change.
type Config struct {
	// DataAttributePrefix selects the attributes read: "aktion" reads
	// data-aktion-*.
	DataAttributePrefix string `yaml:"prefix" json:"prefix"`

	// AutoActivate makes New scan the document right away.
	AutoActivate bool `yaml:"auto_activate" json:"auto_activate"`

	// DebugMode enables the engine logger. Without it nothing is logged.
	DebugMode bool `yaml:"debug" json:"debug"`

	// IOS applies the iOS click hack to click sources.
	IOS bool `yaml:"ios" json:"ios"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		DataAttributePrefix: compiler.DefaultPrefix,
		AutoActivate:        true,
	}
}
