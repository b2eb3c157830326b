package config

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/lightyen/ipv6-checker/discovery"
)

var (
	LogLevel     zapcore.Level
	Version      = "dev"
	PrintVersion bool
	// Command is the first non-flag argument, e.g. "install".
	Command    string
	ConfigPath = "config.json"
)

type Configuration struct {
	ServerPort   int      `json:"port" usage:"HTTP listen port"`
	Endpoints    []string `json:"urls" usage:"comma separated list of IPv6 echo endpoints"`
	ProbeTimeout Duration `json:"probe_timeout" usage:"timeout of a single endpoint request"`
	RaceDeadline Duration `json:"race_deadline" usage:"upper bound of one discovery"`
	ForceIPv6    bool     `json:"force_ipv6" usage:"dial endpoints over IPv6 only"`
	LogMode      string   `json:"log_mode" usage:"console or file"`
	LogFile      string   `json:"log_file" usage:"log file path in file mode"`
}

var DefaultConfig = Configuration{
	ServerPort: 3443,
	Endpoints: []string{
		"https://6.ipw.cn",
		"http://checkipv6.dyndns.com/",
	},
	ProbeTimeout: Duration(discovery.DefaultProbeTimeout),
	RaceDeadline: Duration(discovery.DefaultRaceDeadline),
	LogMode:      "console",
}

// Default returns a copy of DefaultConfig that shares no slices with it.
func Default() Configuration {
	c := DefaultConfig
	c.Endpoints = append([]string(nil), DefaultConfig.Endpoints...)
	return c
}

func init() {
	if v, exists := os.LookupEnv("LOG_LEVEL"); exists {
		_ = LogLevel.Set(strings.ToLower(v))
	}
	if v, exists := os.LookupEnv("CONFIG"); exists {
		if v != "" {
			ConfigPath = v
		}
	}
}

// Duration is a time.Duration written as "10s" in the config file.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
