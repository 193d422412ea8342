package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// EnvBaseAPI names the environment variable holding the default base URL.
	EnvBaseAPI       = "MMW_BASE_API"
	defaultUserAgent = "mmwdash/0.1"
)

// SessionStore is the holder of the bearer token.
type SessionStore interface {
	Token() string
	ResetToken() error
}

// Notifier is the user-facing error surface.
type Notifier interface {
	Error(message string)
}

// Confirmer shows a confirm/cancel dialog and blocks until it is answered or
// ctx is done. It returns true only for an explicit confirm.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// Reloader restarts the dashboard from a clean state.
type Reloader interface {
	Reload()
}

// Prompt describes a confirm/cancel dialog.
type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Warning      bool
}

// ReauthPrompt is shown when the backend reports an expired or invalid session.
var ReauthPrompt = Prompt{
	Title:        "Confirm logout",
	Message:      "You have been logged out. Cancel to stay on this page, or log in again.",
	ConfirmLabel: "Log in again",
	CancelLabel:  "Cancel",
	Warning:      true,
}

// Deps are the collaborators a Client needs. Nil members fall back to no-ops.
type Deps struct {
	Session   SessionStore
	Notifier  Notifier
	Confirmer Confirmer
	Reloader  Reloader
	Logger    *zerolog.Logger
	Transport http.RoundTripper
	// Context bounds detached re-authentication prompts.
	Context context.Context
}

// Client issues envelope-checked calls against the vitals backend. One Client
// is shared by every endpoint wrapper; it holds no per-request state.
type Client struct {
	cfg       Config
	http      *http.Client
	session   SessionStore
	notifier  Notifier
	confirmer Confirmer
	reloader  Reloader
	log       zerolog.Logger
	ctx       context.Context
	userAgent string

	// token is read once at construction and is not attached to requests.
	token string

	prompts sync.WaitGroup
}

// New builds a Client from cfg layered over the defaults.
func New(cfg Config, deps Deps) *Client {
	c := &Client{
		cfg:       defaultConfig().merge(cfg),
		session:   deps.Session,
		notifier:  deps.Notifier,
		confirmer: deps.Confirmer,
		reloader:  deps.Reloader,
		log:       zerolog.Nop(),
		ctx:       deps.Context,
		userAgent: defaultUserAgent,
	}
	if deps.Logger != nil {
		c.log = deps.Logger.With().Str("component", "request").Logger()
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	transport := deps.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	c.http = &http.Client{Transport: transport}
	if c.session != nil {
		c.token = c.session.Token()
	}
	return c
}

func defaultConfig() Config {
	return Config{
		BaseURL: strings.TrimSpace(os.Getenv(EnvBaseAPI)),
		Timeout: DefaultTimeout,
	}
}

// Config returns a copy of the client-level configuration.
func (c *Client) Config() Config {
	return c.cfg.clone()
}

// Authenticated reports whether a session token was present at construction.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Wait blocks until every pending re-authentication prompt has finished.
func (c *Client) Wait() {
	c.prompts.Wait()
}

// Do sends one request and runs it through both stages. body may be nil, an
// io.Reader, a *Form or any JSON-encodable value.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...Option) (*Reply, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	cfg := c.cfg.with(opts)
	log := c.log.With().
		Str("request_id", uuid.NewString()).
		Str("method", method).
		Str("path", path).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body, cfg)
	if err == nil {
		req, err = c.beforeSend(req)
	}
	if err != nil {
		log.Error().Err(err).Msg("request error")
		c.notify(NoticeRequestFailed)
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportFailure(log, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	log = log.With().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Logger()
	return c.afterReceive(log, req, resp, cfg)
}

// beforeSend is the request stage. It forwards the request unchanged.
func (c *Client) beforeSend(req *http.Request) (*http.Request, error) {
	// TODO: set X-Token from c.token once the backend owners confirm the
	// monitoring endpoints expect authenticated traffic.
	return req, nil
}

// afterReceive is the response stage: envelope validation, failure
// notification and re-authentication.
func (c *Client) afterReceive(log zerolog.Logger, req *http.Request, resp *http.Response, cfg Config) (*Reply, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportFailure(log, fmt.Errorf("read response: %w", err))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, c.transportFailure(log, &StatusError{
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: resp.StatusCode,
			})
		}
		return nil, c.transportFailure(log, fmt.Errorf("decode response: %w", err))
	}

	if !env.OK() {
		return nil, c.envelopeFailure(log, env)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.transportFailure(log, &StatusError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
		})
	}
	log.Debug().Msg("request ok")
	return newReply(resp, cfg, env), nil
}

func (c *Client) transportFailure(log zerolog.Logger, err error) error {
	log.Error().Err(err).Msg("response error")
	c.notify(NoticeRequestFailed)
	return err
}

func (c *Client) envelopeFailure(log zerolog.Logger, env Envelope) error {
	log.Warn().Int("code", env.Code).Str("message", env.Message).Msg("request rejected")

	notice := env.Message
	if notice == "" {
		notice = NoticeRequestFailed
	}
	c.notify(notice)

	if IsReauthCode(env.Code) {
		c.promptReauth(log)
	}

	msg := env.Message
	if msg == "" {
		msg = errRequestFallback
	}
	return &APIError{Code: env.Code, Message: msg}
}

// promptReauth asks the user to log in again without blocking the failing
// call. Confirming clears the session and reloads; cancelling does nothing.
func (c *Client) promptReauth(log zerolog.Logger) {
	if c.confirmer == nil {
		return
	}
	c.prompts.Add(1)
	go func() {
		defer c.prompts.Done()
		if !c.confirmer.Confirm(c.ctx, ReauthPrompt) {
			log.Info().Msg("re-login declined")
			return
		}
		if c.session != nil {
			if err := c.session.ResetToken(); err != nil {
				log.Error().Err(err).Msg("reset token")
			}
		}
		log.Info().Msg("session reset, reloading")
		if c.reloader != nil {
			c.reloader.Reload()
		}
	}()
}

func (c *Client) notify(message string) {
	if c.notifier != nil {
		c.notifier.Error(message)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, cfg Config) (*http.Request, error) {
	target, err := resolveURL(cfg.BaseURL, path, cfg.Query)
	if err != nil {
		return nil, err
	}
	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Caller headers go last and win.
	for k, v := range cfg.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	return req, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		return b.encode()
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// resolveURL joins base and path the way the browser client did: plain
// concatenation, so a base path prefix such as /api is kept.
func resolveURL(base, path string, query url.Values) (string, error) {
	if strings.Contains(path, "://") {
		return withQuery(path, query)
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("no base url configured (set %s)", EnvBaseAPI)
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	joined := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	return withQuery(joined, query)
}

func withQuery(raw string, query url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			for _, item := range v {
				values.Add(k, item)
			}
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}
