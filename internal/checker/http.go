package checker

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

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"github.com/wzshiming/socks4"
	"golang.org/x/net/proxy"

	"github.com/August26/proxytrial/internal/model"
)

// UserAgent identifies trial requests to the target site.
const UserAgent = "proxytrial/1.0"

// readChunk is the read size used when scanning a response body.
const readChunk = 32 << 10

// Checker runs a single trial through a proxy.
type Checker interface {
	Check(ctx context.Context, uri model.ProxyURI) model.TrialOutcome
}

// HTTPChecker fetches Target through the proxy with a fresh client per
// call, so no connection state is shared between proxies.
type HTTPChecker struct {
	Target   string
	Timeout  time.Duration
	match    *ahocorasick.Trie // nil when any response counts
	matchLen int
}

// NewHTTPChecker builds a checker from the run configuration.
func NewHTTPChecker(cfg model.Config) *HTTPChecker {
	p := &HTTPChecker{
		Target:  cfg.Target,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if cfg.MatchString != "" {
		p.match = ahocorasick.NewTrieBuilder().AddStrings([]string{cfg.MatchString}).Build()
		p.matchLen = len(cfg.MatchString)
	}
	return p
}

func (p *HTTPChecker) Check(ctx context.Context, uri model.ProxyURI) model.TrialOutcome {
	client, err := buildClient(uri, p.Timeout)
	if err != nil {
		return model.TrialOutcome{
			Kind:   model.OutcomeFailure,
			Reason: "invalid proxy: " + err.Error(),
		}
	}
	defer client.CloseIdleConnections()

	start := time.Now()
	status, found, err := p.fetch(ctx, client)
	out := model.TrialOutcome{
		StatusCode: status,
		LatencyMs:  time.Since(start).Milliseconds(),
	}

	switch {
	case err != nil && isTimeout(err):
		out.Kind = model.OutcomeTimeout
	case err != nil:
		out.Kind = model.OutcomeFailure
		out.Reason = causeOf(err)
	case !found:
		out.Kind = model.OutcomeContentMismatch
	default:
		out.Kind = model.OutcomeSuccess
	}
	return out
}

// buildClient returns a single-use *http.Client that tunnels every
// request through uri. Certificates are not verified: many proxies
// intercept TLS.
func buildClient(uri model.ProxyURI, timeout time.Duration) (*http.Client, error) {
	u, err := url.Parse(uri.String())
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", uri.String())
	}

	base := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		DisableKeepAlives:     true,
	}

	switch uri.Scheme {
	case model.SchemeHTTP, model.SchemeHTTPS:
		transport.Proxy = http.ProxyURL(u)
		transport.DialContext = base.DialContext
	case model.SchemeSOCKS4:
		// SOCKS4A is a superset of SOCKS4: IPv4 targets go out as plain
		// SOCKS4 requests and hostnames are resolved by the proxy.
		remote := *u
		remote.Scheme = "socks4a"
		dialer, err := socks4.NewDialer(remote.String())
		if err != nil {
			return nil, err
		}
		transport.DialContext = dialer.DialContext
	case model.SchemeSOCKS5:
		dialer, err := proxy.FromURL(u, base)
		if err != nil {
			return nil, err
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("dialer for %q does not support contexts", u.Scheme)
		}
		transport.DialContext = cd.DialContext
	default:
		return nil, fmt.Errorf("unsupported scheme %q", uri.Scheme)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// fetch requests Target and reports whether the body holds the match
// string. Without a match string the body is drained and any response
// counts.
func (p *HTTPChecker) fetch(ctx context.Context, client *http.Client) (int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Target, nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	if p.match == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, err == nil, err
	}
	found, err := bodyContains(resp.Body, p.match, p.matchLen, readChunk)
	return resp.StatusCode, found, err
}

// bodyContains streams r through m. Each chunk is scanned together with
// the last n-1 bytes of the previous one, so a match split across reads
// is still found and the whole body is covered.
func bodyContains(r io.Reader, m *ahocorasick.Trie, n, chunkSize int) (bool, error) {
	keep := n - 1
	if keep < 0 {
		keep = 0
	}
	chunk := make([]byte, chunkSize)
	window := make([]byte, 0, keep+chunkSize)
	for {
		read, err := r.Read(chunk)
		if read > 0 {
			window = append(window, chunk[:read]...)
			if len(m.Match(window)) > 0 {
				return true, nil
			}
			if len(window) > keep {
				window = append(window[:0], window[len(window)-keep:]...)
			}
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// causeOf strips the "Get <url>:" wrapper added by the HTTP client.
func causeOf(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
