// Package eda is a client for the EDA REST API. It handles
// authentication, health and version queries, and the transaction
// API used to create and delete resources.
package eda

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// API groups for resources manipulated through the transaction API.
const (
	CoreGroup        = "core.eda.nokia.com"
	CoreVersion      = "v1"
	InterfaceGroup   = "interfaces.eda.nokia.com"
	InterfaceVersion = "v1alpha1"
)

// Client talks to a single EDA API endpoint. It lazily authenticates on
// the first request that needs a token and buffers transaction items
// until CommitTransaction is called. It is not safe for concurrent use.
type Client struct {
	baseURL  string
	username string
	password string

	http *http.Client

	accessToken  string
	refreshToken string
	version      string

	items []TransactionItem
}

// NewClient returns a client for the EDA API at baseURL. When verify is
// false the server certificate is not checked, which is the common case
// for lab deployments with self-signed certificates.
func NewClient(baseURL, username, password string, verify bool) *Client {
	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !verify},
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		// No client timeout: transaction detail requests long-poll
		// with waitForComplete=true.
		http: &http.Client{Transport: transport},
	}
}

// Login obtains an access token from the EDA API.
func (c *Client) Login() error {
	payload := map[string]string{
		"username": c.username,
		"password": c.password,
	}
	resp, err := c.Post("auth/login", payload, false)
	if err != nil {
		return err
	}
	body, err := decodeObject(resp)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if code, ok := body["code"]; ok && !numberEquals(code, 200) {
		return util.NewConnectionError(c.baseURL,
			fmt.Sprintf("authentication failed: %v %v", body["message"], body["details"]))
	}
	token, ok := body["access_token"].(string)
	if !ok || token == "" {
		return util.NewConnectionError(c.baseURL, "no access token in login response")
	}
	c.accessToken = token
	c.refreshToken, _ = body["refresh_token"].(string)
	return nil
}

// Get performs a GET request against the API path, authenticating first
// when requiresAuth is set and no token is held yet.
func (c *Client) Get(path string, requiresAuth bool) (*http.Response, error) {
	return c.do(http.MethodGet, path, nil, requiresAuth)
}

// Post performs a POST request with a JSON payload.
func (c *Client) Post(path string, payload any, requiresAuth bool) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}
	return c.do(http.MethodPost, path, bytes.NewReader(data), requiresAuth)
}

func (c *Client) do(method, path string, body io.Reader, requiresAuth bool) (*http.Response, error) {
	if requiresAuth && c.accessToken == "" {
		util.Info("No access token yet, authenticating")
		if err := c.Login(); err != nil {
			return nil, err
		}
	}

	url := c.baseURL + "/" + path
	util.Debugf("%s %s", method, url)

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if requiresAuth {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.NewConnectionError(url, err.Error())
	}
	return resp, nil
}

// IsUp reports whether the EDA health endpoint answers with status UP.
func (c *Client) IsUp() bool {
	util.Info("Checking whether EDA is up")
	resp, err := c.Get("core/about/health", false)
	if err != nil {
		util.Debugf("Health check failed: %v", err)
		return false
	}
	body, err := decodeObject(resp)
	if err != nil {
		util.Debugf("Health check failed: %v", err)
		return false
	}
	return body["status"] == "UP"
}

// Version returns the EDA version, without any build suffix. The result
// is cached after the first successful call.
func (c *Client) Version() (string, error) {
	if c.version != "" {
		return c.version, nil
	}

	util.Info("Getting EDA version")
	resp, err := c.Get("core/about/version", true)
	if err != nil {
		return "", err
	}
	body, err := decodeObject(resp)
	if err != nil {
		return "", fmt.Errorf("version: %w", err)
	}
	eda, _ := body["eda"].(map[string]any)
	full, _ := eda["version"].(string)
	if full == "" {
		return "", util.NewConnectionError(c.baseURL, "no version in response")
	}
	version, _, _ := strings.Cut(full, "-")
	util.Infof("EDA version is %s", version)
	c.version = version
	return version, nil
}

// IsAuthenticated reports whether the client can make authenticated
// calls, by requesting the EDA version.
func (c *Client) IsAuthenticated() bool {
	_, err := c.Version()
	return err == nil
}

// TryEndpoints performs GET requests against the given API paths in
// order and returns the decoded body of the first one that answers 200,
// together with the path that served it. Different EDA releases expose
// listing APIs under different paths. Returns nil when all paths fail.
func (c *Client) TryEndpoints(paths []string, what string) (any, string) {
	for _, path := range paths {
		resp, err := c.Get(path, true)
		if err != nil {
			util.Debugf("Error trying endpoint %s: %v", path, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			util.Debugf("Endpoint %s returned status %d", path, resp.StatusCode)
			continue
		}
		data, err := decodeAny(resp)
		if err != nil {
			util.Debugf("Error decoding response from %s: %v", path, err)
			continue
		}
		util.Debugf("Got %s via endpoint %s", what, path)
		return data, path
	}
	util.Warnf("Failed to get %s from any API endpoint", what)
	return nil, ""
}

// ExtractNames pulls resource names out of a listing response, which may
// be a Kubernetes-style object with an items list, a plain list of
// names, or a list of objects carrying a name. A nil filter keeps all
// names.
func ExtractNames(data any, filter func(string) bool) []string {
	keep := func(name string) bool {
		return name != "" && (filter == nil || filter(name))
	}

	var names []string
	switch v := data.(type) {
	case map[string]any:
		items, _ := v["items"].([]any)
		for _, item := range items {
			if name := objectName(item); keep(name) {
				names = append(names, name)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if keep(s) {
					names = append(names, s)
				}
				continue
			}
			if name := objectName(item); keep(name) {
				names = append(names, name)
			}
		}
	}
	return names
}

func objectName(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	if name, ok := obj["name"].(string); ok && name != "" {
		return name
	}
	meta, _ := obj["metadata"].(map[string]any)
	name, _ := meta["name"].(string)
	return name
}

// decodeObject reads and closes the response body and decodes it as a
// JSON object. Numbers are kept as json.Number so IDs round-trip
// without float formatting.
func decodeObject(resp *http.Response) (map[string]any, error) {
	data, err := decodeAny(resp)
	if err != nil {
		return nil, err
	}
	body, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected response shape %T", data)
	}
	return body, nil
}

func decodeAny(resp *http.Response) (any, error) {
	defer resp.Body.Close()
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return data, nil
}

func numberEquals(v any, want int64) bool {
	num, ok := v.(json.Number)
	if !ok {
		return false
	}
	n, err := num.Int64()
	return err == nil && n == want
}
