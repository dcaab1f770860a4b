// Package strava fetches recent activities from the Strava API and stores
// them in the same row layout as the bulk export.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL  = "https://www.strava.com/api/v3"
	DefaultTokenURL = "https://www.strava.com/oauth/token"
	DefaultPerPage  = 30

	// maxPerPage is the largest page size the API accepts.
	maxPerPage = 200
)

// ErrMissingCredentials is returned when client id, secret or refresh token
// is not configured.
var ErrMissingCredentials = errors.New("strava credentials missing (client_id, client_secret and refresh_token are required)")

// Credentials are the OAuth values of a Strava API application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (c Credentials) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// ClientOptions configures endpoints and transport. Zero values use defaults.
type ClientOptions struct {
	BaseURL  string
	TokenURL string
	Timeout  time.Duration

	// HTTPClient is the transport for both token refresh and API calls.
	HTTPClient *http.Client
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the Strava REST API, refreshing the access token as needed.
type Client struct {
	http    *http.Client
	tokens  oauth2.TokenSource
	baseURL string
	log     logrus.FieldLogger
}

// NewClient builds a client that exchanges the refresh token for access
// tokens on demand.
func NewClient(ctx context.Context, creds Credentials, opts ClientOptions, log logrus.FieldLogger) (*Client, error) {
	if !creds.complete() {
		return nil, ErrMissingCredentials
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	tokens := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	httpClient := oauth2.NewClient(ctx, tokens)
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	return &Client{
		http:    httpClient,
		tokens:  tokens,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		log:     log,
	}, nil
}

// RefreshToken returns the refresh token currently in use. Strava may rotate
// it on refresh; callers should persist a changed value.
func (c *Client) RefreshToken() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", err
	}
	return tok.RefreshToken, nil
}

// ListActivities returns one page of the athlete's activities, newest first.
// Pages start at 1.
func (c *Client) ListActivities(ctx context.Context, page, perPage int) ([]Activity, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	endpoint := c.baseURL + "/athlete/activities?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"page":     page,
		"per_page": perPage,
		"count":    len(activities),
	}).Debug("listed strava activities")
	return activities, nil
}
