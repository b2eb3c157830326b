package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lightyen/ipv6-checker/zok/log"
)

const (
	DefaultProbeTimeout = 10 * time.Second

	// DefaultBodyLimit bounds how much of an endpoint page is scanned.
	DefaultBodyLimit = 1 << 20
)

var ErrProbeTimeout = errors.New("probe timeout")

type Status int

const (
	Failed Status = iota
	NotFound
	Found
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Outcome is the result of probing one endpoint.
type Outcome struct {
	Endpoint string
	Status   Status
	Address  string
	Err      error
	Elapsed  time.Duration
}

type Prober interface {
	Probe(ctx context.Context, endpoint string) Outcome
}

type HTTPProber struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	// BodyLimit is the number of body bytes scanned, zero means
	// DefaultBodyLimit.
	BodyLimit int64
}

// NewHTTPProber returns a prober sharing client. A zero timeout means
// DefaultProbeTimeout.
func NewHTTPProber(client *http.Client, timeout time.Duration) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{Client: client, Timeout: timeout}
}

// Probe issues a single GET to endpoint and scans the body for an address,
// whatever the response status.
func (p *HTTPProber) Probe(ctx context.Context, endpoint string) (o Outcome) {
	o.Endpoint = endpoint
	start := time.Now()
	defer func() {
		o.Elapsed = time.Since(start)
	}()

	body, truncated, err := p.fetch(ctx, endpoint)
	if err != nil {
		o.Status, o.Err = Failed, err
		return
	}

	if truncated {
		log.Debugf("discovery: response from %s cut at %d bytes", endpoint, len(body))
	}

	if ip, ok := extract(body, truncated); ok {
		o.Status, o.Address = Found, ip
		return
	}

	o.Status = NotFound
	return
}

// fetch returns at most BodyLimit bytes of the body, and whether there was more.
func (p *HTTPProber) fetch(ctx context.Context, endpoint string) ([]byte, bool, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)
	if res != nil && res.Body != nil {
		defer res.Body.Close()
	}

	if err != nil {
		return nil, false, timeoutCause(ctx, err)
	}

	limit := p.BodyLimit
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, false, timeoutCause(ctx, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}

func timeoutCause(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), ErrProbeTimeout) {
		return fmt.Errorf("%w: %w", ErrProbeTimeout, err)
	}
	return err
}
