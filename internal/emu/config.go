package emu

import (
	"log"

	"github.com/FabianRolfMatthiasNoll/cgbio/internal/apu"
	"github.com/FabianRolfMatthiasNoll/cgbio/internal/mmio"
)

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace        bool        // log every IO register write
	SoundEnabled bool        // route FF10-FF3F to Sound
	ForceDMG     bool        // run CGB-capable cartridges without color hardware
	Sound        mmio.Sound  // sound register collaborator; apu.New() if nil
	Logger       *log.Logger // cartridge info and traces
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Sound == nil {
		c.Sound = apu.New()
	}
}
