package baas

import (
	"bytes"
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

// RESTClient talks to Supabase's PostgREST endpoint (/rest/v1/<table>).
type RESTClient struct {
	baseURL string
	apiKey  string
	token   string
	http    *http.Client
}

// NewRESTClient returns an admin client authenticated with the service role
// key, which bypasses row level security.
func NewRESTClient(supabaseURL, serviceKey string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RESTClient{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/rest/v1",
		apiKey:  serviceKey,
		token:   serviceKey,
		http:    httpClient,
	}
}

// WithSession returns a copy scoped to an end user's access token, so row
// level security applies as it would for that user.
func (c *RESTClient) WithSession(anonKey, accessToken string) *RESTClient {
	cp := *c
	cp.apiKey = anonKey
	cp.token = accessToken
	return &cp
}

// RESTError is a PostgREST error body plus the HTTP status.
type RESTError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RESTError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, msg)
}

func (c *RESTClient) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	params := encodeQuery(q)
	params.Set("select", "*")
	var rows []Row
	if err := c.do(ctx, http.MethodGet, table, params, nil, "", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *RESTClient) Insert(ctx context.Context, table string, row Row) (Row, error) {
	var rows []Row
	if err := c.do(ctx, http.MethodPost, table, url.Values{}, row, "return=representation", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("baas: insert into %s returned no row", table)
	}
	return rows[0], nil
}

func (c *RESTClient) Upsert(ctx context.Context, table string, rows []Row, onConflict string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	params := url.Values{}
	params.Set("on_conflict", onConflict)
	var written []Row
	err := c.do(ctx, http.MethodPost, table, params, rows, "resolution=merge-duplicates,return=representation", &written)
	if err != nil {
		return 0, err
	}
	return len(written), nil
}

func (c *RESTClient) Update(ctx context.Context, table string, q Query, patch Row) (int, error) {
	var rows []Row
	if err := c.do(ctx, http.MethodPatch, table, encodeQuery(q), patch, "return=representation", &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *RESTClient) Delete(ctx context.Context, table string, q Query) (int, error) {
	var rows []Row
	if err := c.do(ctx, http.MethodDelete, table, encodeQuery(q), nil, "return=representation", &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *RESTClient) do(ctx context.Context, method, table string, params url.Values, body any, prefer string, out any) error {
	endpoint := c.baseURL + "/" + url.PathEscape(table)
	if enc := params.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("baas: encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("baas: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("baas: read %s response: %w", table, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		restErr := &RESTError{Status: resp.StatusCode}
		_ = json.Unmarshal(payload, restErr)
		return sqlStateError(restErr.Code, restErr)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("baas: decode %s response: %w", table, err)
	}
	return nil
}

func encodeQuery(q Query) url.Values {
	params := url.Values{}
	for _, f := range q.Filters {
		params.Add(f.Column, encodeFilter(f))
	}
	if q.Order != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.Order+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params
}

func encodeFilter(f Filter) string {
	switch f.Op {
	case OpIn:
		values, _ := f.Value.([]any)
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(formatValue(v)) + `"`
		}
		return "in.(" + strings.Join(quoted, ",") + ")"
	case OpEq:
		if f.Value == nil {
			return "is.null"
		}
	}
	return string(f.Op) + "." + formatValue(f.Value)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return "null"
		}
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
