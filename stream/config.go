package stream

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/matt-g-everett/ledmotion/animation"
)

// Topics are the MQTT topic roots shared with the devices.
type Topics struct {
	Stream  string `yaml:"stream"`
	Program string `yaml:"program"`
	Control string `yaml:"control"`
	Status  string `yaml:"status"`
}

// Config is the daemon configuration.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientID"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   Topics `yaml:"topics"`
	} `yaml:"mqtt"`

	Engine struct {
		FPS            int    `yaml:"fps"`
		SkipAnimations bool   `yaml:"skipAnimations"`
		LogLevel       string `yaml:"logLevel"`
		// LinearEasing reports whether devices accept linear() easing.
		LinearEasing bool `yaml:"linearEasing"`
		Pregenerate  struct {
			SampleDelta float64 `yaml:"sampleDelta"`
			MaxDuration float64 `yaml:"maxDuration"`
		} `yaml:"pregenerate"`
	} `yaml:"engine"`

	Device struct {
		Name   string `yaml:"name"`
		Pixels int    `yaml:"pixels"`
		// Stream sends every frame instead of programs.
		Stream bool `yaml:"stream"`
	} `yaml:"device"`

	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`

	// AnimationTime is how long each scene plays, in seconds.
	AnimationTime float64                `yaml:"animationTime"`
	Transitions   animation.Transitions `yaml:"transitions"`
	Scenes        []Scene               `yaml:"scenes"`
}

// LoadConfig reads a YAML config file and fills in defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("stream: opening config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("stream: decoding %s: %w", path, err)
	}
	c.setDefaults()
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = "ledmotion"
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Mqtt.Topics.Program == "" {
		c.Mqtt.Topics.Program = "home/xmastree/program"
	}
	if c.Mqtt.Topics.Control == "" {
		c.Mqtt.Topics.Control = "home/xmastree/control"
	}
	if c.Mqtt.Topics.Status == "" {
		c.Mqtt.Topics.Status = "home/xmastree/status"
	}
	if c.Engine.FPS <= 0 {
		c.Engine.FPS = 30
	}
	if c.Engine.LogLevel == "" {
		c.Engine.LogLevel = "info"
	}
	if c.Device.Name == "" {
		c.Device.Name = "xmastree"
	}
	if c.Device.Pixels <= 0 {
		c.Device.Pixels = 500
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":3000"
	}
	if c.AnimationTime <= 0 {
		c.AnimationTime = 60
	}
}

// EngineConfig converts the engine section for animation.NewEngine.
func (c Config) EngineConfig() animation.Config {
	return animation.Config{
		SkipAnimations: c.Engine.SkipAnimations,
		Pregenerate: animation.Pregenerate{
			SampleDelta: seconds(c.Engine.Pregenerate.SampleDelta),
			MaxDuration: seconds(c.Engine.Pregenerate.MaxDuration),
		},
	}
}

// SceneDuration is AnimationTime as a duration.
func (c Config) SceneDuration() time.Duration {
	return seconds(c.AnimationTime)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
