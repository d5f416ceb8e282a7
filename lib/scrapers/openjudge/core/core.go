// Package core maintains the authenticated HTTP session against an
// OpenJudge-family deployment: browser-like headers, cookie handling
// with write-through persistence, response decompression and the login
// flows that establish the session in the first place.
package core

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"ojassist/lib/cookiejar"
	"ojassist/lib/sessionstore"
	"ojassist/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/openjudge/core")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const previewLimit = 200

// StatusError is returned for any response with status >= 400. The
// preview carries the first part of the body for diagnostics.
type StatusError struct {
	Code    int
	Preview string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Preview)
}

type Config struct {
	// BaseDomain is the judge's apex domain; groups live on
	// subdomains of it.
	BaseDomain string `json:"base_domain"`
	Scheme     string `json:"scheme"`
	// DefaultLocale seeds the language cookie when the server never
	// picked one for us.
	DefaultLocale string `json:"default_locale"`
	// CloudflareBypass wraps the transport for deployments fronted
	// by Cloudflare.
	CloudflareBypass bool `json:"cloudflare_bypass"`
}

func (c *Config) applyDefaults() {
	if c.BaseDomain == "" {
		c.BaseDomain = "openjudge.cn"
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en_US"
	}
}

// Client owns the cookie jar and the current session. A cookie update
// and its persistence write happen together under the same lock before
// the triggering response is surfaced, so persisted state can never
// silently trail the in-memory state.
type Client struct {
	cfg   Config
	http  *resty.Client
	store sessionstore.Store

	mu      sync.Mutex
	jar     *cookiejar.Jar
	session sessionstore.Session
}

type Response struct {
	Body       string
	Header     http.Header
	StatusCode int
}

func NewClient(store sessionstore.Store, cfg Config) *Client {
	cfg.applyDefaults()

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	// keep-alive pool shared across all flows; extra requests queue
	// on the pool instead of failing
	transport := &http.Transport{
		MaxConnsPerHost:     6,
		MaxIdleConnsPerHost: 6,
		IdleConnTimeout:     90 * time.Second,
	}
	client.SetTransport(transport)
	if cfg.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeaders(map[string]string{
		"user-agent":      userAgent,
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "zh-CN,zh;q=0.9,en;q=0.8",
		"cache-control":   "no-cache",
		// pinning the encoding ourselves disables the transport's
		// transparent gzip so decodeBody sees the raw stream
		"accept-encoding": "gzip, deflate",
	})

	telemetry.InstrumentResty(client, "scrapers/openjudge/http")

	return &Client{
		cfg:   cfg,
		http:  client,
		store: store,
		jar:   cookiejar.New(),
	}
}

func (c *Client) RootURL() string {
	return fmt.Sprintf("%s://%s/", c.cfg.Scheme, c.cfg.BaseDomain)
}

// GroupURL builds an absolute URL on a group's subdomain.
func (c *Client) GroupURL(group, path string) string {
	return fmt.Sprintf("%s://%s.%s%s", c.cfg.Scheme, group, c.cfg.BaseDomain, path)
}

func (c *Client) BaseDomain() string {
	return c.cfg.BaseDomain
}

// Get fetches a page with the session's cookies attached.
func (c *Client) Get(ctx context.Context, pageURL string) (Response, error) {
	req := c.http.R().SetContext(ctx)
	return c.do(req, http.MethodGet, pageURL)
}

// PostForm issues an AJAX-style form post the way the judge's own
// frontend does, with Origin and Referer matched to the target
// subdomain.
func (c *Client) PostForm(ctx context.Context, postURL string, form map[string]string) (Response, error) {
	origin := originOf(postURL)
	req := c.http.R().
		SetContext(ctx).
		SetHeader("x-requested-with", "XMLHttpRequest").
		SetHeader("accept", "application/json, text/javascript, */*; q=0.01").
		SetHeader("origin", origin).
		SetHeader("referer", origin+"/").
		SetFormData(form)
	return c.do(req, http.MethodPost, postURL)
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func (c *Client) do(req *resty.Request, method, rawURL string) (Response, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return Response{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	host := target.Hostname()

	c.mu.Lock()
	if header := c.jar.HeaderFor(host); header != "" {
		req.SetHeader("cookie", header)
	}
	c.mu.Unlock()

	res, err := req.Execute(method, rawURL)
	if err != nil {
		return Response{}, err
	}

	if setCookies := res.Header().Values("Set-Cookie"); len(setCookies) > 0 {
		c.mu.Lock()
		for _, header := range setCookies {
			c.jar.SetFromHeader(header, host)
		}
		err := sessionstore.SaveJar(req.Context(), c.store, c.jar)
		c.mu.Unlock()
		if err != nil {
			return Response{}, fmt.Errorf("persist cookie jar: %w", err)
		}
	}

	body, err := decodeBody(res.Body(), res.Header().Get("Content-Encoding"))
	if err != nil {
		return Response{}, fmt.Errorf("decode response body: %w", err)
	}

	if res.StatusCode() >= 400 {
		return Response{}, &StatusError{
			Code:    res.StatusCode(),
			Preview: truncate(body, previewLimit),
		}
	}

	return Response{
		Body:       body,
		Header:     res.Header(),
		StatusCode: res.StatusCode(),
	}, nil
}

// decodeBody inflates gzip/deflate bodies. The compressed stream is
// already fully buffered by the transport read, only the decompressed
// text is ever re-accumulated.
func decodeBody(raw []byte, encoding string) (string, error) {
	switch encoding {
	case "gzip":
		// an upstream layer may have inflated the stream already;
		// only decode when the gzip magic is still present
		if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
			return string(raw), nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", err
		}
		defer reader.Close()
		text, err := io.ReadAll(reader)
		if err != nil {
			return "", err
		}
		return string(text), nil
	case "deflate":
		// servers disagree on whether deflate means zlib-wrapped
		// or raw flate
		reader, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			flateReader := flate.NewReader(bytes.NewReader(raw))
			defer flateReader.Close()
			text, err := io.ReadAll(flateReader)
			if err != nil {
				return "", err
			}
			return string(text), nil
		}
		defer reader.Close()
		text, err := io.ReadAll(reader)
		if err != nil {
			return "", err
		}
		return string(text), nil
	default:
		return string(raw), nil
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
