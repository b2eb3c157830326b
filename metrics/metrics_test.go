package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightyen/ipv6-checker/discovery"
)

func TestObserveProbe(t *testing.T) {
	c := New()
	c.ObserveProbe(discovery.Outcome{Endpoint: "https://a", Status: discovery.Found, Address: "2001:db8::1", Elapsed: time.Millisecond})
	c.ObserveProbe(discovery.Outcome{Endpoint: "https://a", Status: discovery.Failed, Err: errors.New("refused")})
	c.ObserveProbe(discovery.Outcome{Endpoint: "https://b", Status: discovery.NotFound})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.probes.WithLabelValues("https://a", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.probes.WithLabelValues("https://a", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.probes.WithLabelValues("https://b", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.probeDuration))
}

func TestObserveRace(t *testing.T) {
	c := New()
	c.ObserveRace(discovery.Result{Address: "2001:db8::1", Elapsed: time.Second})
	c.ObserveRace(discovery.Result{})
	c.ObserveRace(discovery.Result{})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.races.WithLabelValues("found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.races.WithLabelValues("not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.raceDuration))
}

func TestRegistry(t *testing.T) {
	c := New()
	c.ObserveRace(discovery.Result{Address: "2001:db8::1"})
	c.ObserveRace(discovery.Result{})
	c.ObserveProbe(discovery.Outcome{Endpoint: "https://a", Status: discovery.Found})

	n, err := testutil.GatherAndCount(c.Registry(), "ipv6_checker_races_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(c.Registry(), "ipv6_checker_probes_total", "ipv6_checker_probe_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(c.Registry(), "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
