package shapedtex

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("shapedtex: invalid config")

// Config holds the tunables of a shaped texture.
type Config struct {
	// MaxMipmappingFPS bounds how often the mipmap tower is refreshed.
	// Damage closer together than 1/MaxMipmappingFPS counts as fast.
	MaxMipmappingFPS int `toml:"max_mipmapping_fps"`

	// FastUpdateCeiling is the number of consecutive fast damages after
	// which fresh content is painted from the base texture.
	FastUpdateCeiling int `toml:"fast_update_ceiling"`

	// RemipmapSlackUsec is subtracted from the remipmap deadline to absorb
	// timer slack, in microseconds.
	RemipmapSlackUsec int `toml:"remipmap_slack_usec"`

	// MaxClipRects is the clip rectangle count above which a single full
	// quad is drawn.
	MaxClipRects int `toml:"max_clip_rects"`

	// CreateMipmaps enables the mipmap tower.
	CreateMipmaps bool `toml:"create_mipmaps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxMipmappingFPS:  5,
		FastUpdateCeiling: 20,
		RemipmapSlackUsec: 1000,
		MaxClipRects:      16,
		CreateMipmaps:     true,
	}
}

// MinMipmapAge returns the minimum age of content worth mipmapping.
func (c Config) MinMipmapAge() time.Duration {
	return time.Second / time.Duration(c.MaxMipmappingFPS)
}

// RemipmapSlack returns RemipmapSlackUsec as a duration.
func (c Config) RemipmapSlack() time.Duration {
	return time.Duration(c.RemipmapSlackUsec) * time.Microsecond
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.MaxMipmappingFPS <= 0:
		return fmt.Errorf("%w: max_mipmapping_fps must be positive, got %d", ErrInvalidConfig, c.MaxMipmappingFPS)
	case c.FastUpdateCeiling <= 0:
		return fmt.Errorf("%w: fast_update_ceiling must be positive, got %d", ErrInvalidConfig, c.FastUpdateCeiling)
	case c.RemipmapSlackUsec < 0:
		return fmt.Errorf("%w: remipmap_slack_usec must not be negative, got %d", ErrInvalidConfig, c.RemipmapSlackUsec)
	case c.RemipmapSlack() >= c.MinMipmapAge():
		return fmt.Errorf("%w: remipmap slack %v must be below the minimum mipmap age %v",
			ErrInvalidConfig, c.RemipmapSlack(), c.MinMipmapAge())
	case c.MaxClipRects <= 0:
		return fmt.Errorf("%w: max_clip_rects must be positive, got %d", ErrInvalidConfig, c.MaxClipRects)
	}
	return nil
}

// ParseConfig decodes a TOML document on top of DefaultConfig and
// validates the result. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("shapedtex: read config: %w", err)
	}
	return ParseConfig(data)
}
