package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/lightyen/ipv6-checker/zok/log"
)

const DefaultRaceDeadline = 15 * time.Second

// Result is the answer of one race. An empty Address means no address found.
type Result struct {
	Address  string
	Endpoint string
	Elapsed  time.Duration
}

func (r Result) Found() bool {
	return r.Address != ""
}

// Observer is told about every probe outcome and every race result.
type Observer interface {
	ObserveProbe(o Outcome)
	ObserveRace(r Result)
}

type Race struct {
	Prober   Prober
	Deadline time.Duration
	Observer Observer
}

func NewRace(prober Prober, deadline time.Duration) *Race {
	if deadline <= 0 {
		deadline = DefaultRaceDeadline
	}
	return &Race{Prober: prober, Deadline: deadline}
}

// Run probes every endpoint concurrently and returns the first address
// published. Probes still running when Run returns are left to finish on
// their own timeout and their outcomes are dropped.
func (r *Race) Run(ctx context.Context, endpoints []string) (result Result) {
	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		if r.Observer != nil {
			r.Observer.ObserveRace(result)
		}
	}()

	if len(endpoints) == 0 {
		log.Warn("discovery: no endpoints configured")
		return
	}

	found := make(chan Outcome, len(endpoints))
	exhausted := make(chan struct{})

	probeCtx := context.WithoutCancel(ctx)
	wg := &sync.WaitGroup{}
	wg.Add(len(endpoints))

	for _, endpoint := range endpoints {
		go func(endpoint string) {
			defer wg.Done()
			o := r.Prober.Probe(probeCtx, endpoint)
			if r.Observer != nil {
				r.Observer.ObserveProbe(o)
			}
			switch o.Status {
			case Found:
				log.Debugf("discovery: %s answered %s in %s", endpoint, o.Address, o.Elapsed)
				found <- o
			case NotFound:
				log.Debugf("discovery: no IPv6 in response from %s", endpoint)
			default:
				log.Warnf("discovery: probe %s failed: %v", endpoint, o.Err)
			}
		}(endpoint)
	}

	go func() {
		wg.Wait()
		close(exhausted)
	}()

	deadline := r.Deadline
	if deadline <= 0 {
		deadline = DefaultRaceDeadline
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case o := <-found:
		return Result{Address: o.Address, Endpoint: o.Endpoint}
	case <-exhausted:
		// every send happens before wg.Done, so a winner is already buffered
		select {
		case o := <-found:
			return Result{Address: o.Address, Endpoint: o.Endpoint}
		default:
		}
		log.Warn("discovery: every endpoint failed or had no IPv6 address")
	case <-timer.C:
		log.Warnf("discovery: no IPv6 address within %s", deadline)
	case <-ctx.Done():
		log.Warn("discovery: race abandoned:", context.Cause(ctx))
	}
	return
}
