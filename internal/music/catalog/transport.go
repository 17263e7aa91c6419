package catalog

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	_ "github.com/bdandy/go-socks4"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// NewHTTPClient returns the client used for all catalog traffic. proxyStr
// may be an http, https, socks4 or socks5 URL; an unusable proxy falls back
// to a direct connection.
func NewHTTPClient(proxyStr string, timeout time.Duration, log *zap.Logger) *http.Client {
	if log == nil {
		log = zap.NewNop()
	}
	direct := &http.Client{Timeout: timeout}

	if proxyStr == "" {
		return direct
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		log.Warn("invalid proxy, going direct", zap.String("proxy", proxyStr), zap.Error(err))
		return direct
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
	case "socks5", "socks4":
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			log.Warn("proxy dialer error, going direct", zap.String("proxy", proxyStr), zap.Error(err))
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}
	default:
		log.Warn("unsupported proxy scheme, going direct", zap.String("scheme", proxyURL.Scheme))
	}

	if transport == nil {
		return direct
	}

	log.Info("catalog traffic goes through proxy", zap.String("scheme", proxyURL.Scheme), zap.String("host", proxyURL.Host))
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

type statusKey struct{}

// statusRecorder remembers the first overload status seen by requests made
// under one context.
type statusRecorder struct {
	mu   sync.Mutex
	code int
	url  string
}

func withStatusRecorder(ctx context.Context) (context.Context, *statusRecorder) {
	rec := &statusRecorder{}
	return context.WithValue(ctx, statusKey{}, rec), rec
}

func (r *statusRecorder) observe(code int, url string) {
	if code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.code == 0 {
		r.code, r.url = code, url
	}
}

// wrap reports a recorded overload as *StatusError, even when the client
// itself returned no error.
func (r *statusRecorder) wrap(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.code == 0 {
		return err
	}
	return &StatusError{Code: r.code, URL: r.url, Err: err}
}

// recordingTransport passes response statuses to the statusRecorder found
// in the request context.
type recordingTransport struct {
	base http.RoundTripper
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if rec, ok := req.Context().Value(statusKey{}).(*statusRecorder); ok {
		rec.observe(resp.StatusCode, req.URL.String())
	}
	return resp, nil
}
