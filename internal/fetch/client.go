// internal/fetch/client.go
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const userAgent = "YmlFeed 1.0v"

var (
	// ErrUnavailable – wspólny znacznik "brak danych" dla wywołującego.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrNoCredentials – brak API_EMAIL/API_KEY, wykryty przed wysłaniem.
	ErrNoCredentials = errors.New("missing credentials")
)

// Kind of failure, mirrors the error taxonomy of the job.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindStatus      Kind = "status"
	KindDecode      Kind = "decode"
	KindCredentials Kind = "credentials"
)

// Error opisuje nieudane wywołanie. Zawsze Is(ErrUnavailable).
type Error struct {
	URL    string
	Method string
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s %s: http %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnavailable, e.Err}
	}
	return []error{ErrUnavailable}
}

// Credentials wysyłane w body POST-a.
type Credentials struct {
	Email string
	Key   string
}

func (c Credentials) valid() bool { return c.Email != "" && c.Key != "" }

type Client struct {
	log  zerolog.Logger
	http *http.Client
	lim  *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient podmienia klienta (testy, proxy).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRate ogranicza tempo zapytań; rps <= 0 wyłącza limit.
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.lim = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// RequestOption modyfikuje pojedyncze zapytanie (auth, nagłówki).
type RequestOption func(*http.Request)

// WithBasicAuth – np. klucze REST API WooCommerce.
func WithBasicAuth(user, pass string) RequestOption {
	return func(r *http.Request) { r.SetBasicAuth(user, pass) }
}

func New(log zerolog.Logger, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		log:  log.With().Str("component", "fetch").Logger(),
		http: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetJSON pobiera i dekoduje JSON (liczby jako json.Number).
func (c *Client) GetJSON(ctx context.Context, url string, opts ...RequestOption) (any, error) {
	body, err := c.do(ctx, http.MethodGet, url, nil, opts...)
	if err != nil {
		return nil, err
	}
	return c.decodeJSON(http.MethodGet, url, body)
}

// PostJSON wysyła {email, key, format:"json"} i dekoduje odpowiedź.
func (c *Client) PostJSON(ctx context.Context, url string, cred Credentials) (any, error) {
	if !cred.valid() {
		return nil, c.fail(&Error{URL: url, Method: http.MethodPost, Kind: KindCredentials, Err: ErrNoCredentials})
	}

	payload, err := json.Marshal(map[string]string{
		"email":  cred.Email,
		"key":    cred.Key,
		"format": "json",
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeJSON(http.MethodPost, url, body)
}

// GetRaw zwraca surowe body (np. XML feedu ze zdjęciami).
func (c *Client) GetRaw(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, opts...)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, opts ...RequestOption) ([]byte, error) {
	if c.lim != nil {
		if err := c.lim.Wait(ctx); err != nil {
			return nil, c.fail(&Error{URL: url, Method: method, Kind: KindTransport, Err: err})
		}
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindTransport, Err: err})
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindTransport, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindStatus, Status: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindTransport, Err: err})
	}

	c.log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("upstream ok")
	return body, nil
}

func (c *Client) decodeJSON(method, url string, body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindDecode, Err: err})
	}
	// po wartości może być tylko whitespace (np. nie doklejony HTML z proxy)
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return nil, c.fail(&Error{URL: url, Method: method, Kind: KindDecode, Err: err})
	}
	return v, nil
}

// fail loguje z URL-em i przyczyną; wywołujący dostaje tylko sygnał braku danych.
func (c *Client) fail(e *Error) error {
	ev := c.log.Error().
		Str("method", e.Method).
		Str("url", e.URL).
		Str("kind", string(e.Kind))
	if e.Status != 0 {
		ev = ev.Int("status", e.Status)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg("upstream call failed")
	return e
}
