package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lightyen/ipv6-checker/zok/log"
)

var (
	configuration atomic.Value
	ErrPort       = errors.New("port out of range")
	durationType  = reflect.TypeOf(Duration(0))
	stringsType   = reflect.TypeOf([]string(nil))
)

func init() {
	configuration.Store(Default())
}

func Config() Configuration {
	return configuration.Load().(Configuration)
}

// Parse loads the config file, then applies environment variables and
// command line flags on top of it.
func Parse() error {
	Load()
	return FlagParse(os.Args[1:])
}

func Load() {
	ConfigPath = filepath.Clean(ConfigPath)
	configuration.Store(LoadOrCreate(ConfigPath))
}

// LoadOrCreate reads filename. A missing file is created with the defaults.
// A file that cannot be decoded or holds an invalid configuration is moved
// to filename.bak and replaced with the defaults.
func LoadOrCreate(filename string) Configuration {
	m, err := ReadConfigFile(filename)
	switch {
	case err == nil:
		log.Info("config: loaded", filename)
		return m
	case errors.Is(err, os.ErrNotExist):
		log.Warnf("config: %s not found, creating default config", filename)
	default:
		log.Warnf("config: failed to load %s: %v, using default config", filename, err)
		if b, err := os.ReadFile(filename); err == nil {
			if err := os.WriteFile(filename+".bak", b, 0o644); err != nil {
				log.Error("config: backup:", err)
			} else {
				log.Info("config: previous config saved to", filename+".bak")
			}
		}
	}

	m = Default()
	if err := WriteConfigFile(filename, m); err != nil {
		log.Error("config: write default config:", err)
	} else {
		log.Info("config: wrote default config to", filename)
	}
	return m
}

// ReadConfigFile decodes filename over the defaults. On any error,
// including a failed Validate, the defaults are returned.
func ReadConfigFile(filename string) (config Configuration, err error) {
	config = Default()

	b, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return config, err
	}

	// fields missing from the file keep their defaults
	if err := json.Unmarshal(b, &config); err != nil {
		return Default(), err
	}
	if err := config.Validate(); err != nil {
		return Default(), err
	}
	return config, nil
}

func WriteConfigFile(filename string, config Configuration) error {
	b, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filename, append(b, '\n'), 0o644)
}

func (c Configuration) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: %d", ErrPort, c.ServerPort)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "1m30s" style strings, or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var sec float64
		if err := json.Unmarshal(b, &sec); err != nil {
			return fmt.Errorf("invalid duration %s", b)
		}
		*d = Duration(sec * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func parseValue(f reflect.Value, s string) (v any, err error) {
	switch f.Type() {
	case durationType:
		var n time.Duration
		n, err = time.ParseDuration(s)
		return Duration(n), err
	case stringsType:
		var list []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		return list, nil
	}

	switch f.Kind() {
	default:
		err = errors.ErrUnsupported
	case reflect.String:
		v = s
	case reflect.Bool:
		v, err = strconv.ParseBool(s)
	case reflect.Int:
		v, err = strconv.Atoi(s)
	case reflect.Int64:
		v, err = strconv.ParseInt(s, 0, 64)
	case reflect.Uint:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 0)
		v = uint(n)
	case reflect.Uint16:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 16)
		v = uint16(n)
	case reflect.Float64:
		v, err = strconv.ParseFloat(s, 64)
	}
	return
}
