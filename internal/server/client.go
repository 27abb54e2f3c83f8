package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Client is a synchronous connection to a Server.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a ws:// url, sending token as a bearer token when set.
func Dial(ctx context.Context, url, token string) (*Client, error) {
	opts := &websocket.DialOptions{}
	if token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + token}}
	}
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Do sends req and waits for its response. A response carrying an error
// message is returned along with that error.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := wsjson.Read(ctx, c.conn, &resp); err != nil {
		return Response{}, err
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (c *Client) Spaces(ctx context.Context) (Response, error) {
	return c.Do(ctx, Request{Op: OpSpaces})
}

func (c *Client) Reset(ctx context.Context, seed *int64) (Response, error) {
	return c.Do(ctx, Request{Op: OpReset, Seed: seed})
}

func (c *Client) Step(ctx context.Context, action []int64) (Response, error) {
	return c.Do(ctx, Request{Op: OpStep, Action: action})
}

func (c *Client) StepMulti(ctx context.Context, actions map[string][]int64) (Response, error) {
	return c.Do(ctx, Request{Op: OpStep, Actions: actions})
}

// Close closes the connection normally.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
