// Package config decodes the fabric's INI file (or CLI positional fallback)
// into typed server/client configuration, validated with
// go-playground/validator the way certificates.Config validates itself.
package config

import (
	"fmt"
	"net"

	libval "github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/nabbar/svc-fabric/errors"
	"github.com/nabbar/svc-fabric/internal/errs"
	"github.com/nabbar/svc-fabric/internal/iniconf"
)

const (
	errBadValidation errors.CodeError = iota + errors.MinPkgFabCfg
)

func init() {
	errors.RegisterIdFctMessage(errBadValidation, getMessage)
}

func getMessage(code errors.CodeError) string {
	if code == errBadValidation {
		return "configuration failed validation"
	}
	return ""
}

// Multicast carries the discovery group settings shared by both runners.
// SelfDiscoveryEnabled is only meaningful on the client.
type Multicast struct {
	Address              string `mapstructure:"address" validate:"required,ip4_addr"`
	Port                 int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	SelfDiscoveryEnabled bool   `mapstructure:"self-discovery-enabled"`
}

// Service carries the server's dispatch endpoint settings.
type Service struct {
	Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ExecPath string `mapstructure:"exec-path" validate:"required"`
}

// Monitor carries the monitoring endpoint settings.
type Monitor struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// Presence carries the optional, out-of-scope STUN/TURN rendezvous address.
type Presence struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

// Run carries process-lifecycle settings. The run-as-damon key spelling is
// inherited from the upstream INI format and kept for compatibility.
type Run struct {
	RunAsDaemon bool `mapstructure:"run-as-damon"`
}

// Server is the ServerRunner's typed configuration, mirroring the INI
// sections: multicast.*, service.*, monitor.*, presence.*, run.*.
type Server struct {
	Multicast Multicast `mapstructure:"multicast"`
	Service   Service   `mapstructure:"service"`
	Monitor   Monitor   `mapstructure:"monitor"`
	Presence  Presence  `mapstructure:"presence"`
	Run       Run       `mapstructure:"run"`
}

// Client is the ClientRunner's typed configuration: same shape as Server
// minus service.* and monitor.*, plus multicast.self-discovery-enabled.
type Client struct {
	Multicast Multicast `mapstructure:"multicast"`
	Presence  Presence  `mapstructure:"presence"`
	Run       Run       `mapstructure:"run"`
}

func validate(v interface{}) error {
	if er := libval.New().Struct(v); er != nil {
		return errBadValidation.Error(fmt.Errorf("%w", er))
	}
	return nil
}

// LoadServer decodes an iniconf.Tree (parsed from an INI file) into a Server
// config through a short-lived viper instance seeded only with the tree's
// flattened keys, and validates the result. Environment variables are not
// consulted and no defaults are applied.
func LoadServer(tree iniconf.Tree) (*Server, error) {
	v := viper.New()
	if e := v.MergeConfigMap(normalizeBools(tree.Flatten())); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	cfg := &Server{}
	if e := v.Unmarshal(cfg, weaklyTyped); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	if e := validate(cfg); e != nil {
		return nil, e
	}

	return cfg, nil
}

// LoadClient mirrors LoadServer for the client's smaller key set.
func LoadClient(tree iniconf.Tree) (*Client, error) {
	v := viper.New()
	if e := v.MergeConfigMap(normalizeBools(tree.Flatten())); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	cfg := &Client{}
	if e := v.Unmarshal(cfg, weaklyTyped); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	if e := validate(cfg); e != nil {
		return nil, e
	}

	return cfg, nil
}

func weaklyTyped(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = true
}

// boolKeys are the flattened INI keys whose spec-mandated vocabulary is
// "true"/"on"/"false"/"off" (case-insensitive), which mapstructure's
// WeaklyTypedInput does not itself recognize ("on"/"off" aren't accepted
// by strconv.ParseBool). normalizeBools resolves them through
// iniconf.ParseBool before they ever reach viper/mapstructure.
var boolKeys = []string{"run.run-as-damon", "multicast.self-discovery-enabled"}

func normalizeBools(flat map[string]interface{}) map[string]interface{} {
	for _, key := range boolKeys {
		raw, ok := flat[key]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if b, ok := iniconf.ParseBool(s); ok {
			flat[key] = b
		}
	}
	return flat
}

// ServerFromArgs builds a Server config from the CLI positional fallback:
// <exe> <mcAddr> <mcPort> <svcPort> <monPort> [presence <prAddr> <prPort>] [daemon]
func ServerFromArgs(args []string) (*Server, error) {
	if len(args) < 4 {
		return nil, errs.ErrConfiguration.Error(fmt.Errorf("expected at least 4 positional args, got %d", len(args)))
	}

	cfg := &Server{}
	cfg.Multicast.Address = args[0]

	var e error
	if cfg.Multicast.Port, e = atoiPort(args[1]); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}
	if cfg.Service.Port, e = atoiPort(args[2]); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}
	if cfg.Monitor.Port, e = atoiPort(args[3]); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	rest := args[4:]
	rest, cfg.Presence = consumePresence(rest)
	cfg.Run.RunAsDaemon = consumeDaemon(rest)

	if net.ParseIP(cfg.Multicast.Address) == nil {
		return nil, errs.ErrConfiguration.Error(fmt.Errorf("invalid multicast address %q", cfg.Multicast.Address))
	}

	return cfg, nil
}

// ClientFromArgs builds a Client config from the CLI positional fallback:
// <exe> <mcAddr> <mcPort> [presence <prAddr> <prPort>] [daemon]
func ClientFromArgs(args []string) (*Client, error) {
	if len(args) < 2 {
		return nil, errs.ErrConfiguration.Error(fmt.Errorf("expected at least 2 positional args, got %d", len(args)))
	}

	cfg := &Client{}
	cfg.Multicast.Address = args[0]

	var e error
	if cfg.Multicast.Port, e = atoiPort(args[1]); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	rest := args[2:]
	rest, cfg.Presence = consumePresence(rest)
	cfg.Run.RunAsDaemon = consumeDaemon(rest)

	if net.ParseIP(cfg.Multicast.Address) == nil {
		return nil, errs.ErrConfiguration.Error(fmt.Errorf("invalid multicast address %q", cfg.Multicast.Address))
	}

	return cfg, nil
}

func atoiPort(s string) (int, error) {
	var p int
	if _, e := fmt.Sscanf(s, "%d", &p); e != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, e)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}

func consumePresence(args []string) ([]string, Presence) {
	if len(args) >= 3 && args[0] == "presence" {
		p := Presence{Address: args[1]}
		if port, e := atoiPort(args[2]); e == nil {
			p.Port = port
		}
		return args[3:], p
	}
	return args, Presence{}
}

func consumeDaemon(args []string) bool {
	for _, a := range args {
		if a == "daemon" {
			return true
		}
	}
	return false
}
