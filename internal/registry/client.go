package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pageSize = 100

// Client talks to the Registry REST API using basic auth. Pull pages through
// result sets transparently; callers always receive the full collection.
type Client struct {
	baseURL    string
	user       string
	pass       string
	httpClient *http.Client
}

func NewClient(baseURL, user, pass string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		user:       user,
		pass:       pass,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Pull fetches every person record for a collection resource ("students",
// "facstaff"), walking pages until a short page signals the end.
func (c *Client) Pull(ctx context.Context, resource string, params url.Values) ([]Person, error) {
	var out []Person
	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(pageSize))

		var batch []Person
		if err := c.get(ctx, resource, q, &batch); err != nil {
			return nil, fmt.Errorf("pull %s page %d: %w", resource, page, err)
		}
		out = append(out, batch...)
		if len(batch) < pageSize {
			return out, nil
		}
	}
}

// Household fetches a single household record by id.
func (c *Client) Household(ctx context.Context, id int) (Household, error) {
	// single-record endpoints wrap the entity under its name
	var wrapper struct {
		Household Household `json:"household"`
	}
	if err := c.get(ctx, fmt.Sprintf("households/%d", id), nil, &wrapper); err != nil {
		return Household{}, fmt.Errorf("pull household %d: %w", id, err)
	}
	return wrapper.Household, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	u := c.baseURL + "/" + resource
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.pass)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("registry: %s returned %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
