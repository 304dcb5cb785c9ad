// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/profile-engine/internal/httputil"
	"github.com/pdiddy/profile-engine/pkg/types"
)

const (
	defaultBaseURL   = "https://www.linkedin.com"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultRate      = 2

	authPath    = "/uas/authenticate"
	voyagerPath = "/voyager/api"

	// authUserAgent is the client identity the authentication endpoint expects.
	authUserAgent = "LIAuthLibrary:0.0.3 com.linkedin.android:4.1.881 Asus_ASUS_Z01QD:android_9"

	skillsPageSize = 100
)

var (
	// ErrUnauthorized is returned for rejected credentials or an expired session.
	ErrUnauthorized = errors.New("linkedin: unauthorized")

	// ErrChallenge is returned when LinkedIn demands an interactive
	// verification (captcha, e-mail PIN) before allowing the login.
	ErrChallenge = errors.New("linkedin: login challenge required")
)

// Client talks to LinkedIn's Voyager API with an authenticated session.
type Client struct {
	http    *resty.Client
	baseURL *url.URL
	logger  *zap.Logger
}

var _ Scraper = (*Client)(nil)

// NewClient creates an unauthenticated client. Call Login before fetching
// profiles. Requests are rate limited to cfg.RequestsPerSecond (default 2).
func NewClient(cfg types.LinkedInConfig, logger *zap.Logger) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	httpCfg := cfg.HTTPConfig
	if httpCfg.UserAgent == "" {
		httpCfg.UserAgent = defaultUserAgent
	}
	client := httputil.NewClient(httpCfg)
	client.SetBaseURL(baseURL.String())

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeaders(map[string]string{
		"Accept-Language":           "en-AU,en-GB;q=0.9,en-US;q=0.8,en;q=0.7",
		"X-Li-Lang":                 "en_US",
		"X-Restli-Protocol-Version": "2.0.0",
	})

	perSecond := cfg.RequestsPerSecond
	if perSecond <= 0 {
		perSecond = defaultRate
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Client{http: client, baseURL: baseURL, logger: logger}, nil
}

type authResponse struct {
	LoginResult  string `json:"login_result"`
	ChallengeURL string `json:"challenge_url"`
}

// Login authenticates with email and password. It bootstraps the session
// cookies, posts the credentials, and installs the CSRF token for later
// Voyager requests.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrUnauthorized)
	}

	authHeaders := map[string]string{
		"X-Li-User-Agent": authUserAgent,
		"X-User-Language": "en",
		"X-User-Locale":   "en_US",
	}

	resp, err := c.http.R().SetContext(ctx).SetHeaders(authHeaders).Get(authPath)
	if err != nil {
		return fmt.Errorf("requesting session cookies: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("requesting session cookies: HTTP %d", resp.StatusCode())
	}

	sessionID := c.sessionID()
	if sessionID == "" {
		return fmt.Errorf("%w: no JSESSIONID cookie in response", ErrUnauthorized)
	}

	resp, err = c.http.R().
		SetContext(ctx).
		SetHeaders(authHeaders).
		SetFormData(map[string]string{
			"session_key":      email,
			"session_password": password,
			"JSESSIONID":       sessionID,
		}).
		Post(authPath)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	// login_result is reported with error statuses too and takes precedence.
	var auth authResponse
	_ = json.Unmarshal(resp.Body(), &auth)
	switch auth.LoginResult {
	case "", "PASS":
	case "CHALLENGE":
		return fmt.Errorf("%w: %s", ErrChallenge, auth.ChallengeURL)
	default:
		return fmt.Errorf("%w: login result %q", ErrUnauthorized, auth.LoginResult)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.IsError():
		return fmt.Errorf("authenticating: HTTP %d", resp.StatusCode())
	case auth.LoginResult == "":
		return fmt.Errorf("%w: no login result in response", ErrUnauthorized)
	}

	c.http.SetHeader("Csrf-Token", c.sessionID())
	c.logger.Debug("authenticated with LinkedIn", zap.String("email", email))
	return nil
}

// sessionID returns the JSESSIONID cookie value without surrounding quotes.
func (c *Client) sessionID() string {
	for _, ck := range c.http.GetClient().Jar.Cookies(c.baseURL) {
		if ck.Name == "JSESSIONID" {
			return strings.Trim(ck.Value, `"`)
		}
	}
	return ""
}

// voyagerStatus is the error envelope Voyager returns with HTTP 200.
type voyagerStatus struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// getVoyager fetches a Voyager endpoint and returns the body.
func (c *Client) getVoyager(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(voyagerPath + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return nil, fmt.Errorf("%w: GET %s returned HTTP %d", ErrUnauthorized, path, resp.StatusCode())
	case resp.IsError():
		return nil, fmt.Errorf("GET %s returned HTTP %d", path, resp.StatusCode())
	}

	var st voyagerStatus
	if err := json.Unmarshal(resp.Body(), &st); err == nil && st.Status != 0 && st.Status != http.StatusOK {
		return nil, fmt.Errorf("GET %s failed with status %d: %s", path, st.Status, st.Message)
	}
	return resp.Body(), nil
}

// GetProfile fetches the full profile for publicID, including the skill list,
// as a raw field map keyed by LinkedIn field names.
func (c *Client) GetProfile(ctx context.Context, publicID string) (RawProfile, error) {
	body, err := c.getVoyager(ctx, "/identity/profiles/"+url.PathEscape(publicID)+"/profileView", nil)
	if err != nil {
		return nil, err
	}

	raw, err := parseProfileView(body)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", publicID, err)
	}

	skills, err := c.Skills(ctx, publicID)
	if err != nil {
		c.logger.Warn("could not fetch skills", zap.String("profile", publicID), zap.Error(err))
		skills = nil
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return nil, err
	}
	raw["skills"] = data

	return raw, nil
}

// Skills returns the profile's complete skill list.
func (c *Client) Skills(ctx context.Context, publicID string) ([]types.Skill, error) {
	body, err := c.getVoyager(ctx, "/identity/profiles/"+url.PathEscape(publicID)+"/skills", map[string]string{
		"count": fmt.Sprint(skillsPageSize),
		"start": "0",
	})
	if err != nil {
		return nil, err
	}

	var page struct {
		Elements []types.Skill `json:"elements"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing skills: %w", err)
	}
	return page.Elements, nil
}
