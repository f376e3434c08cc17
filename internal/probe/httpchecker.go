package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "statusmonitor/1.0"

	// ErrTimeout is the error text for probes that hit their deadline.
	ErrTimeout = "timeout"

	maxDrainBytes = 64 << 10
)

type clientKey struct {
	verifyTLS       bool
	followRedirects bool
}

// HTTPChecker issues GET requests through a pooled transport shared by every
// probe. Clients differ only in TLS verification and redirect policy.
type HTTPChecker struct {
	DiagnoseDNS bool
	// Resolver is used for DNS diagnosis; nil means net.DefaultResolver.
	Resolver Resolver

	clients map[clientKey]*http.Client
	now     func() time.Time
}

func NewHTTPChecker(diagnoseDNS bool) *HTTPChecker {
	return newHTTPChecker(diagnoseDNS, nil)
}

// newHTTPChecker lets tests replace the resolver used when dialing.
func newHTTPChecker(diagnoseDNS bool, dialResolver *net.Resolver) *HTTPChecker {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultTimeout,
			KeepAlive: 30 * time.Second,
			Resolver:  dialResolver,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: DefaultTimeout,
	}
	insecure := base.Clone()
	insecure.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per target

	noRedirect := func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	clients := make(map[clientKey]*http.Client, 4)
	for _, verify := range []bool{true, false} {
		tr := base
		if !verify {
			tr = insecure
		}
		clients[clientKey{verify, true}] = &http.Client{Transport: tr}
		clients[clientKey{verify, false}] = &http.Client{Transport: tr, CheckRedirect: noRedirect}
	}
	return &HTTPChecker{DiagnoseDNS: diagnoseDNS, clients: clients, now: time.Now}
}

func (h *HTTPChecker) resolver() Resolver {
	if h.Resolver == nil {
		return net.DefaultResolver
	}
	return h.Resolver
}

func (h *HTTPChecker) client(p domain.ProbeConfig) *http.Client {
	return h.clients[clientKey{p.VerifyTLS, p.FollowRedirects}]
}

// Check probes t once. The whole exchange is bounded by t.Probe.Timeout.
func (h *HTTPChecker) Check(ctx context.Context, t domain.Target) domain.ProbeResult {
	timeout := t.Probe.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return h.down(fmt.Sprintf("invalid request: %v", err))
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	for k, v := range t.Probe.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := h.client(t.Probe).Do(req)
	if err != nil {
		return h.down(h.describe(cctx, req.URL, err))
	}
	latency := time.Since(start).Milliseconds()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	resp.Body.Close()

	out := domain.ProbeResult{
		Status:    domain.StatusUp,
		LatencyMS: latency,
		Code:      domain.IntPtr(resp.StatusCode),
		Timestamp: h.now().UTC(),
	}
	if !t.Probe.IsSuccess(resp.StatusCode) {
		out.Status = domain.StatusDown
		out.Error = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	}
	return out
}

func (h *HTTPChecker) down(msg string) domain.ProbeResult {
	return domain.ProbeResult{
		Status:    domain.StatusDown,
		Error:     msg,
		Timestamp: h.now().UTC(),
	}
}

// describe turns a transport error into a short human-readable reason. ctx
// is the probe's own context, so any DNS diagnosis stays within its deadline.
func (h *HTTPChecker) describe(ctx context.Context, u *url.URL, err error) string {
	var (
		netErr  net.Error
		dnsErr  *net.DNSError
		certErr *tls.CertificateVerificationError
		opErr   *net.OpError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &dnsErr):
		msg := "dns lookup failed: " + dnsErr.Error()
		if h.DiagnoseDNS && ctx.Err() == nil {
			msg += " dns=" + CheckDNSWith(ctx, h.resolver(), u.Hostname()).Class
		}
		return msg
	case errors.As(err, &certErr):
		return "tls verification failed: " + certErr.Err.Error()
	case errors.As(err, &opErr):
		return "connection failed: " + opErr.Error()
	}
	var uErr *url.Error
	if errors.As(err, &uErr) {
		return uErr.Err.Error()
	}
	return err.Error()
}
