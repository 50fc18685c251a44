package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/atinylittleshell/gsuggest/pkg/suggestinput"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	QueryParam = "matching"

	maxResponseBytes = 1 << 20
)

var (
	ErrMalformedResponse = errors.New("malformed lookup response")
	ErrUnexpectedStatus  = errors.New("unexpected lookup status")
)

// Client fetches matches from an HTTP lookup endpoint of the form
// GET <base>?matching=<query>.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid lookup url %q: scheme and host are required", baseURL)
	}

	return &Client{
		baseURL:    u,
		httpClient: cleanhttp.DefaultPooledClient(),
		logger:     logger,
	}, nil
}

// RequestURL returns the URL requested for query.
func (c *Client) RequestURL(query string) string {
	u := *c.baseURL
	values := u.Query()
	values.Set(QueryParam, query)
	u.RawQuery = values.Encode()
	return u.String()
}

func (c *Client) Fetch(ctx context.Context, query string) ([]suggestinput.Match, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("lookup %q: reading body: %w", query, err)
	}

	matches, err := ParseMatches(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("lookup fetched matches", zap.String("query", query), zap.Int("count", len(matches)))
	return matches, nil
}

// ParseMatches decodes a JSON array of objects that each carry a string
// "name". Any other shape is rejected.
func ParseMatches(body []byte) ([]suggestinput.Match, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformedResponse)
	}

	elements := result.Array()
	matches := make([]suggestinput.Match, 0, len(elements))
	for i, element := range elements {
		if !element.IsObject() {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedResponse, i)
		}
		name := element.Get("name")
		if name.Type != gjson.String {
			return nil, fmt.Errorf("%w: element %d has no string name", ErrMalformedResponse, i)
		}
		matches = append(matches, suggestinput.Match{
			Name: name.String(),
			Raw:  element.Raw,
		})
	}

	return matches, nil
}
