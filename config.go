package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// CodeConfig selects the code geometry, either by profile name or by
// explicit dimensions. Explicit fields override the profile.
type CodeConfig struct {
	Profile   string `yaml:"profile"`
	N         int    `yaml:"n"`
	K         int    `yaml:"k"`
	WC        int    `yaml:"wc"`
	WR        int    `yaml:"wr"`
	Seed      uint64 `yaml:"seed"`
	SeedLabel string `yaml:"seed_label"`
}

type DecoderConfig struct {
	Algorithm      string  `yaml:"algorithm"`
	MaxIterations  int     `yaml:"max_iterations"`
	ErrorThreshold float64 `yaml:"error_threshold"`
	StrategyWeight float64 `yaml:"strategy_weight"`
	AdaptiveWindow int     `yaml:"adaptive_window"`
	Crossover      float64 `yaml:"crossover"`
}

type ChannelConfig struct {
	Model string  `yaml:"model"`
	Flips int     `yaml:"flips"`
	Sigma float64 `yaml:"sigma"`
	Seed  int64   `yaml:"seed"`
}

type SimConfig struct {
	Trials int   `yaml:"trials"`
	Seed   int64 `yaml:"seed"`
}

type PayloadConfig struct {
	Compression string `yaml:"compression"`
	Size        int    `yaml:"size"`
	Input       string `yaml:"input"`
	Seed        int64  `yaml:"seed"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Code    CodeConfig    `yaml:"code"`
	Decoder DecoderConfig `yaml:"decoder"`
	Channel ChannelConfig `yaml:"channel"`
	Sim     SimConfig     `yaml:"sim"`
	Payload PayloadConfig `yaml:"payload"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is given:
// the base-512 profile, belief propagation, and a light BSC.
func DefaultConfig() *Config {
	return &Config{
		Code: CodeConfig{Profile: "base-512", Seed: 1},
		Decoder: DecoderConfig{
			Algorithm:      "belief-propagation",
			MaxIterations:  ldpc.DefaultMaxIterations,
			ErrorThreshold: ldpc.DefaultErrorThreshold,
			StrategyWeight: ldpc.DefaultStrategyWeight,
			AdaptiveWindow: ldpc.DefaultAdaptiveWindow,
			Crossover:      ldpc.DefaultCrossover,
		},
		Channel: ChannelConfig{Model: "bsc", Flips: 4, Sigma: 0.8, Seed: 7},
		Sim:     SimConfig{Trials: 50, Seed: 11},
		Payload: PayloadConfig{Compression: "zstd", Size: 4096, Seed: 13},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Channel.Model {
	case "", "bsc":
		if c.Channel.Flips < 0 {
			return fmt.Errorf("channel flips %d must be nonnegative", c.Channel.Flips)
		}
	case "awgn":
		if c.Channel.Sigma <= 0 {
			return fmt.Errorf("channel sigma %v must be positive for awgn", c.Channel.Sigma)
		}
	default:
		return fmt.Errorf("unknown channel model %q", c.Channel.Model)
	}
	if c.Sim.Trials <= 0 {
		return fmt.Errorf("sim trials %d must be positive", c.Sim.Trials)
	}
	switch c.Payload.Compression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("unknown compression %q", c.Payload.Compression)
	}
	if c.Payload.Input == "" && c.Payload.Size <= 0 {
		return fmt.Errorf("payload size %d must be positive without an input file", c.Payload.Size)
	}
	return nil
}

// Parameters resolves the code and decoder sections into validated
// ldpc.CodeParameters.
func (c *Config) Parameters() (ldpc.CodeParameters, error) {
	var p ldpc.CodeParameters
	if c.Code.Profile != "" {
		pr, ok := ldpc.ProfileByName(c.Code.Profile)
		if !ok {
			return p, fmt.Errorf("unknown code profile %q", c.Code.Profile)
		}
		p = pr.Parameters()
	}
	if c.Code.N > 0 {
		p.N = c.Code.N
	}
	if c.Code.K > 0 {
		p.K = c.Code.K
	}
	if c.Code.WC > 0 {
		p.WC = c.Code.WC
	}
	if c.Code.WR > 0 {
		p.WR = c.Code.WR
	}
	if c.Code.SeedLabel != "" {
		p.Seed = ldpc.DeriveSeed(c.Code.SeedLabel)
	} else if c.Code.Seed != 0 {
		p.Seed = c.Code.Seed
	}
	if c.Decoder.Algorithm != "" {
		alg, err := ldpc.ParseAlgorithmKind(c.Decoder.Algorithm)
		if err != nil {
			return p, err
		}
		p.Algorithm = alg
	}
	if c.Decoder.MaxIterations > 0 {
		p.MaxIterations = c.Decoder.MaxIterations
	}
	if c.Decoder.ErrorThreshold > 0 {
		p.ErrorThreshold = c.Decoder.ErrorThreshold
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
