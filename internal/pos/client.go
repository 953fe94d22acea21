package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client talks to the POS REST API. Access tokens are minted lazily from the
// long-lived refresh token and renewed shortly before expiry; the mutex keeps
// concurrent workers from racing the refresh.
type Client struct {
	apiURL       string
	tokenURL     string
	accountID    string
	clientID     string
	clientSecret string
	refreshToken string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

func NewClient(apiURL, tokenURL, accountID, clientID, clientSecret, refreshToken string) *Client {
	return &Client{
		apiURL:       strings.TrimRight(apiURL, "/"),
		tokenURL:     tokenURL,
		accountID:    accountID,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AuthorizationToken exchanges a one-time authorization code for a refresh
// token. Used once during initial setup; the result goes into the secret
// store.
func (c *Client) AuthorizationToken(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}
	tok, err := c.postToken(ctx, form)
	if err != nil {
		return "", err
	}
	return tok.RefreshToken, nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.expiry) {
		return c.accessToken, nil
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {c.refreshToken},
	}
	tok, err := c.postToken(ctx, form)
	if err != nil {
		return "", err
	}
	c.accessToken = tok.AccessToken
	// renew a minute early
	c.expiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) postToken(ctx context.Context, form url.Values) (tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("pos token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return tokenResponse{}, fmt.Errorf("pos token: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return tokenResponse{}, fmt.Errorf("pos token: %w", err)
	}
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, resource string, params url.Values, body, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/API/Account/%s/%s.json", c.apiURL, c.accountID, resource)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pos: %s %s: %w", method, resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pos: %s %s returned %d: %s", method, resource, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// envelope is the standard list response: a count attribute plus the entity
// collection keyed by its name.
type envelope struct {
	Attributes struct {
		Count string `json:"count"`
	} `json:"@attributes"`
	Customer     Many[Customer]     `json:"Customer"`
	CustomerType Many[CustomerType] `json:"CustomerType"`
	PaymentType  Many[PaymentType]  `json:"PaymentType"`
	Shop         Many[Shop]         `json:"Shop"`
	Employee     Many[Employee]     `json:"Employee"`
	Sale         Many[Sale]         `json:"Sale"`
}

// Customers lists customer records matching params.
func (c *Client) Customers(ctx context.Context, params url.Values) ([]Customer, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "Customer", params, nil, &env); err != nil {
		return nil, err
	}
	return env.Customer, nil
}

func (c *Client) CreateCustomer(ctx context.Context, cust Customer) (Customer, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "Customer", nil, cust, &env); err != nil {
		return Customer{}, err
	}
	if len(env.Customer) == 0 {
		return Customer{}, fmt.Errorf("pos: create customer: empty response")
	}
	return env.Customer[0], nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, cust Customer) (Customer, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "Customer/"+id, nil, cust, &env); err != nil {
		return Customer{}, err
	}
	if len(env.Customer) == 0 {
		return Customer{}, fmt.Errorf("pos: update customer %s: empty response", id)
	}
	return env.Customer[0], nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "Customer/"+id, nil, nil, nil)
}

// Sales lists sale records matching params, paging through the full result
// set with the API's offset convention.
func (c *Client) Sales(ctx context.Context, params url.Values) ([]Sale, error) {
	const limit = 100
	var out []Sale
	for offset := 0; ; offset += limit {
		q := url.Values{}
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("limit", fmt.Sprint(limit))
		q.Set("offset", fmt.Sprint(offset))

		var env envelope
		if err := c.do(ctx, http.MethodGet, "Sale", q, nil, &env); err != nil {
			return nil, err
		}
		out = append(out, env.Sale...)
		if len(env.Sale) < limit {
			return out, nil
		}
	}
}

func (c *Client) CreateSale(ctx context.Context, sale SaleCreate) error {
	return c.do(ctx, http.MethodPost, "Sale", nil, sale, nil)
}

func (c *Client) CustomerTypes(ctx context.Context) ([]CustomerType, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "CustomerType", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.CustomerType, nil
}

func (c *Client) PaymentTypes(ctx context.Context) ([]PaymentType, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "PaymentType", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.PaymentType, nil
}

func (c *Client) Shops(ctx context.Context) ([]Shop, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "Shop", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Shop, nil
}

func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "Employee", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Employee, nil
}
