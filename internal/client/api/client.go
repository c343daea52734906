// Package api is an HTTP client for the blood-pressure monitoring REST API.
// It keeps the session cookie between calls the way a browser would.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/goccy/go-json"
)

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Body)
}

// Client calls the API on behalf of one browser-like session.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL. If hc is nil a client with a 10s timeout
// is used. A cookie jar is attached when hc has none.
func New(baseURL string, hc *http.Client) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	var c http.Client
	if hc != nil {
		c = *hc
	} else {
		c.Timeout = 10 * time.Second
	}
	if c.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.Jar = jar
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &c}, nil
}

// NewTLSHTTPClient returns an http.Client trusting the CA certificate at
// caPath, for servers using a private CA.
func NewTLSHTTPClient(caPath string) (*http.Client, error) {
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

// do sends in (if non-nil) as JSON and decodes the response into out
// (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// Register creates a user and logs the session in as that user.
func (c *Client) Register(ctx context.Context, user models.User) (*models.User, error) {
	var created *models.User
	if err := c.do(ctx, http.MethodPost, "/api/assignment/user", user, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// Login looks the user up by credentials. A nil user means the credentials
// did not match.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	q := url.Values{"username": {username}, "password": {password}}
	var user *models.User
	if err := c.do(ctx, http.MethodGet, "/api/assignment/user?"+q.Encode(), nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByUsername returns nil when no user has the name.
func (c *Client) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := url.Values{"username": {username}}
	var user *models.User
	if err := c.do(ctx, http.MethodGet, "/api/assignment/user?"+q.Encode(), nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindAllUsers lists every user.
func (c *Client) FindAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/assignment/user", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByID returns nil when no user has the id.
func (c *Client) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	if err := c.do(ctx, http.MethodGet, "/api/assignment/user/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies patch to the user and returns the stored result.
func (c *Client) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	if err := c.do(ctx, http.MethodPut, "/api/assignment/user/"+url.PathEscape(id), patch, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/assignment/user/"+url.PathEscape(id), nil, nil)
}

// LoggedIn returns the session user, or nil when anonymous.
func (c *Client) LoggedIn(ctx context.Context) (*models.User, error) {
	var user *models.User
	if err := c.do(ctx, http.MethodGet, "/api/assignment/loggedin", nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout makes the session anonymous.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/assignment/logout", nil, nil)
}

// FindAllBPForUser lists the blood-pressure records of a user.
func (c *Client) FindAllBPForUser(ctx context.Context, userID string) ([]models.BloodPressure, error) {
	var records []models.BloodPressure
	if err := c.do(ctx, http.MethodGet, "/api/capstone/user/"+url.PathEscape(userID)+"/bp", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindSampleDataForUser lists the measurement samples of a user.
func (c *Client) FindSampleDataForUser(ctx context.Context, userID string) ([]models.Sample, error) {
	var samples []models.Sample
	if err := c.do(ctx, http.MethodGet, "/api/capstone/user/"+url.PathEscape(userID)+"/sampledata", nil, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// ImportSample uploads a sample and returns it with its generated id.
func (c *Client) ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error) {
	var created *models.Sample
	if err := c.do(ctx, http.MethodPost, "/api/capstone/bp", sample, &created); err != nil {
		return nil, err
	}
	return created, nil
}
