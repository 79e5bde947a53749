// Package client talks to the bookflow REST api. A Client sends one
// submission at a time and never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/model"
	"github.com/oliveagle/jsonpath"
)

var ErrRequestPending = errors.New("request-pending")

// WorkflowError is a request the server answered with an error.
type WorkflowError struct {
	StatusCode int
	Message    string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// Unwrap exposes the matching model error so callers can use errors.Is. The
// server message starts with the error key and may carry details after a
// colon.
func (e *WorkflowError) Unwrap() error {
	key, _, _ := strings.Cut(e.Message, ":")
	return model.ErrorByKey(strings.TrimSpace(key))
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	pending    atomic.Bool
}

func New(serverURL, pluginId string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/") + "/plugins/" + pluginId,
		httpClient: httpClient,
	}
}

// Pending reports whether a submission is in flight.
func (c *Client) Pending() bool {
	return c.pending.Load()
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var res model.Result
		if jerr := json.Unmarshal(data, &res); jerr != nil || res.Error == "" {
			return &WorkflowError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return &WorkflowError{StatusCode: resp.StatusCode, Message: res.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if res, ok := out.(*model.Result); ok && res.Error != "" {
		return &WorkflowError{StatusCode: resp.StatusCode, Message: res.Error}
	}
	return nil
}

// submit sends a mutation unless another one is still outstanding.
func (c *Client) submit(ctx context.Context, path string, body any) (*model.Result, error) {
	if !c.pending.CompareAndSwap(false, true) {
		return nil, ErrRequestPending
	}
	defer c.pending.Store(false)
	var res model.Result
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func decodeData[T any](res *model.Result) (*T, error) {
	raw, ok := res.Messages["data"]
	if !ok {
		return nil, errors.New("response has no data")
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitWorkflow asks the engine to apply req. The returned record is the
// updated master; a deletion returns nil.
func (c *Client) SubmitWorkflow(ctx context.Context, req model.WorkflowRequest) (*model.Borrow, error) {
	res, err := c.submit(ctx, "/workflow", req)
	if err != nil {
		return nil, err
	}
	if req.Delete {
		return nil, nil
	}
	return decodeData[model.Borrow](res)
}

func (c *Client) RequestBorrow(ctx context.Context, key model.BorrowRequestKey) (*model.Borrow, error) {
	res, err := c.submit(ctx, "/borrow", key)
	if err != nil {
		return nil, err
	}
	return decodeData[model.Borrow](res)
}

func (c *Client) UploadBooks(ctx context.Context, actUser string, books []model.Book) (map[string]model.BooksMessage, error) {
	body, err := json.Marshal(books)
	if err != nil {
		return nil, err
	}
	res, err := c.submit(ctx, "/books", model.BooksRequest{Action: model.BooksActionUpload, ActUser: actUser, Body: string(body)})
	if err != nil {
		return nil, err
	}
	return decodeBooksMessages(res)
}

// SetBookAllowed opens or closes borrowing of a book. Closing without a
// reason fails before anything is sent.
func (c *Client) SetBookAllowed(ctx context.Context, postId string, allowed bool, reason string) error {
	if !allowed && strings.TrimSpace(reason) == "" {
		return model.ErrReasonRequired
	}
	_, err := c.submit(ctx, "/books/"+postId+"/allowed", map[string]any{"allowed": allowed, "reason": reason})
	return err
}

// FetchConfig returns the server limits. A field the server does not send
// comes back as -1.
func (c *Client) FetchConfig(ctx context.Context) (model.BookConfig, error) {
	cfg := model.BookConfig{ExpireDays: -1, MaxRenewTimes: -1}
	var res model.Result
	if err := c.do(ctx, http.MethodGet, "/config", nil, &res); err != nil {
		return cfg, err
	}
	raw, ok := res.Messages["data"]
	if !ok {
		return cfg, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return cfg, nil
	}
	cfg.ExpireDays = lookupInt(data, "$.expire_days")
	cfg.MaxRenewTimes = lookupInt(data, "$.max_renew_times")
	return cfg, nil
}

func lookupInt(data any, path string) int {
	v, err := jsonpath.JsonPathLookup(data, path)
	if err != nil {
		return -1
	}
	f, ok := v.(float64)
	if !ok {
		return -1
	}
	return int(f)
}

func (c *Client) GetView(ctx context.Context, recordId string) (*flow.View, error) {
	var res model.Result
	if err := c.do(ctx, http.MethodGet, "/borrows/"+recordId+"/view", nil, &res); err != nil {
		return nil, err
	}
	return decodeData[flow.View](&res)
}

func (c *Client) GetBorrow(ctx context.Context, recordId string) (*model.Borrow, error) {
	var res model.Result
	if err := c.do(ctx, http.MethodGet, "/borrows/"+recordId, nil, &res); err != nil {
		return nil, err
	}
	return decodeData[model.Borrow](&res)
}

// FetchKeeperBooks returns the books with postIds as seen by keeper: the
// counters and only the copies that keeper holds.
func (c *Client) FetchKeeperBooks(ctx context.Context, keeper string, postIds ...string) (map[string]model.Book, error) {
	req := make([]model.Book, len(postIds))
	for i, id := range postIds {
		req[i].PostId = id
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var res model.Result
	if err := c.do(ctx, http.MethodPost, "/books", model.BooksRequest{Action: model.BooksActionFetchInvKeeper, ActUser: keeper, Body: string(body)}, &res); err != nil {
		return nil, err
	}
	msgs, err := decodeBooksMessages(&res)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Book, len(msgs))
	for _, m := range msgs {
		if m.Status != model.BooksMessageOk {
			return nil, &WorkflowError{StatusCode: http.StatusOK, Message: m.Message}
		}
		var b model.Book
		if err := json.Unmarshal([]byte(m.Message), &b); err != nil {
			return nil, fmt.Errorf("invalid book %s: %w", m.PostId, err)
		}
		out[b.PostId] = b
	}
	return out, nil
}

func decodeBooksMessages(res *model.Result) (map[string]model.BooksMessage, error) {
	out := make(map[string]model.BooksMessage, len(res.Messages))
	for k, raw := range res.Messages {
		var m model.BooksMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		out[k] = m
	}
	return out, nil
}
