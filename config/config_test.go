package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateMissing(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")

	m := LoadOrCreate(name)
	assert.Equal(t, Default(), m)

	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"port": 3443`)
	assert.Contains(t, string(b), `"probe_timeout": "10s"`)
	assert.Contains(t, string(b), `"race_deadline": "15s"`)
	assert.Contains(t, string(b), "https://6.ipw.cn")

	again, err := ReadConfigFile(name)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestLoadOrCreatePartial(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"port": 8080, "race_deadline": 3}`), 0o644))

	m := LoadOrCreate(name)
	assert.Equal(t, 8080, m.ServerPort)
	assert.Equal(t, 3*time.Second, m.RaceDeadline.Std())
	assert.Equal(t, DefaultConfig.Endpoints, m.Endpoints)
	assert.Equal(t, 10*time.Second, m.ProbeTimeout.Std())
}

func TestLoadOrCreateEmptyEndpoints(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"urls": []}`), 0o644))

	m := LoadOrCreate(name)
	assert.Empty(t, m.Endpoints)
}

func TestLoadOrCreateMalformed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"port": `), 0o644))

	m := LoadOrCreate(name)
	assert.Equal(t, Default(), m)

	again, err := ReadConfigFile(name)
	require.NoError(t, err, "the broken file is replaced with the defaults")
	assert.Equal(t, Default(), again)

	b, err := os.ReadFile(name + ".bak")
	require.NoError(t, err)
	assert.Equal(t, `{"port": `, string(b))
}

func TestLoadOrCreateInvalidPort(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"port": 70000}`), 0o644))

	_, err := ReadConfigFile(name)
	assert.ErrorIs(t, err, ErrPort)

	m := LoadOrCreate(name)
	assert.Equal(t, Default(), m)

	again, err := ReadConfigFile(name)
	require.NoError(t, err)
	assert.Equal(t, 3443, again.ServerPort)

	b, err := os.ReadFile(name + ".bak")
	require.NoError(t, err)
	assert.Equal(t, `{"port": 70000}`, string(b))
}

func TestLoadOrCreateUnwritable(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json")
	require.NoError(t, os.Mkdir(name, 0o755))

	m := LoadOrCreate(name)
	assert.Equal(t, Default(), m)
	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, d.UnmarshalJSON([]byte(`2.5`)))
	assert.Equal(t, 2500*time.Millisecond, d.Std())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	b, err := Duration(5 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(b))
}

func TestFlagParse(t *testing.T) {
	configuration.Store(Default())
	t.Cleanup(func() {
		configuration.Store(Default())
		Command = ""
	})
	t.Setenv("PORT", "9000")
	t.Setenv("PROBE_TIMEOUT", "4s")

	err := FlagParse([]string{
		"-urls", "https://a.example, https://b.example",
		"-race_deadline", "6s",
		"-force_ipv6",
		"status",
	})
	require.NoError(t, err)

	m := Config()
	assert.Equal(t, 9000, m.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, m.Endpoints)
	assert.Equal(t, 4*time.Second, m.ProbeTimeout.Std())
	assert.Equal(t, 6*time.Second, m.RaceDeadline.Std())
	assert.True(t, m.ForceIPv6)
	assert.Equal(t, "status", Command)
}

func TestFlagParseOverridesEnv(t *testing.T) {
	configuration.Store(Default())
	t.Cleanup(func() { configuration.Store(Default()) })
	t.Setenv("PORT", "9000")

	require.NoError(t, FlagParse([]string{"-port", "9001"}))
	assert.Equal(t, 9001, Config().ServerPort)
}

func TestFlagParseErrors(t *testing.T) {
	configuration.Store(Default())
	t.Cleanup(func() { configuration.Store(Default()) })

	assert.ErrorIs(t, FlagParse([]string{"-port", "0"}), ErrPort)
	assert.Error(t, FlagParse([]string{"-race_deadline", "later"}))

	t.Setenv("PORT", "eighty")
	assert.Error(t, FlagParse(nil))
}
