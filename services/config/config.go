package config

import (
	"bytes"
	"context"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"wristmon-go/bus"
	"wristmon-go/errcode"
	"wristmon-go/types"
)

// -----------------------------------------------------------------------------
// String constants
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	configKey    = "wristmon"
	CtxDeviceKey = "device" // context key used for board name
)

// TopicConfig carries the active configuration, retained.
var TopicConfig = bus.T(configPrefix, configKey)

// EmbeddedConfigLookup allows overriding how board defaults are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Boards lists the boards with an embedded default.
func Boards() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// -----------------------------------------------------------------------------
// Loading
// -----------------------------------------------------------------------------

// Parse decodes YAML. Unknown keys are rejected.
func Parse(raw []byte) (*types.Config, error) {
	var cfg types.Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "config.Parse", Err: err}
	}
	return &cfg, nil
}

// Load reads a config file. When the file names a board, fields it leaves
// unset come from that board's embedded default.
func Load(path string) (*types.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "config.Load", err)
	}
	var probe struct {
		Board string `yaml:"board"`
	}
	_ = yaml.Unmarshal(raw, &probe)

	base := &types.Config{}
	if probe.Board != "" {
		if b, ok := EmbeddedConfigLookup(probe.Board); ok {
			if base, err = Parse(b); err != nil {
				return nil, err
			}
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(base); err != nil {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "config.Load", Msg: path, Err: err}
	}
	return base, nil
}

// Default returns the embedded config for a board.
func Default(board string) (*types.Config, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "config.Default", Msg: "no embedded config for board: " + board}
	}
	return Parse(raw)
}

// Resolve is the usual entry point: file if given, else board default,
// then Validate and Normalize.
func Resolve(path, board string) (*types.Config, error) {
	var (
		cfg *types.Config
		err error
	)
	if path != "" {
		cfg, err = Load(path)
	} else {
		cfg, err = Default(board)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	cfg  *types.Config
}

func NewConfigService(cfg *types.Config) *ConfigService {
	return &ConfigService{Name: serviceName, cfg: cfg}
}

// publishConfig publishes the active config retained. With no config set it
// resolves the board default named in ctx.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	cfg := s.cfg
	if cfg == nil {
		board, _ := ctx.Value(CtxDeviceKey).(string)
		if board == "" {
			return &errcode.E{C: errcode.InvalidConfig, Op: "config.publish", Msg: "missing board in context"}
		}
		var err error
		if cfg, err = Resolve("", board); err != nil {
			return err
		}
		s.cfg = cfg
	}
	conn.Publish(conn.NewMessage(TopicConfig, *cfg, true))
	return nil
}

// Start publishes synchronously so subscribers started afterwards see the
// retained value.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) error {
	return s.publishConfig(ctx, conn)
}
