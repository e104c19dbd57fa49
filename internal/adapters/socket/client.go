package socket

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is the thin transport-side counterpart to Server: it dials the
// Unix socket, sends one framed request per call, and decodes the matching
// response. One Client wraps one connection; it is not safe for concurrent
// use from multiple goroutines.
type Client struct {
	conn net.Conn
}

// Dial connects to the daemon's socket at path.
func Dial(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial daemon socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(op string, req, resp interface{}) error {
	var payload json.RawMessage
	if req != nil {
		body, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		payload = body
	}
	if err := writeFrame(c.conn, &Envelope{Op: op, Payload: payload}); err != nil {
		return fmt.Errorf("send %s request: %w", op, err)
	}
	env, err := readFrame(c.conn)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if env.Error != "" {
		return fmt.Errorf("%s: %s", op, env.Error)
	}
	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(env.Payload, resp); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call("Health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListContainers(req ListContainersRequest) ([]ContainerSummary, error) {
	var resp ListContainersResponse
	if err := c.call("ListContainers", req, &resp); err != nil {
		return nil, err
	}
	return resp.Containers, nil
}

func (c *Client) GetContainer(req GetContainerRequest) (*ContainerSummary, error) {
	var resp GetContainerResponse
	if err := c.call("GetContainer", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Container, nil
}

func (c *Client) StopContainer(req StopContainerRequest) error {
	var resp StopContainerResponse
	return c.call("StopContainer", req, &resp)
}

func (c *Client) GetContainerLogs(req GetContainerLogsRequest) ([]LogEntry, error) {
	var resp GetContainerLogsResponse
	if err := c.call("GetContainerLogs", req, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) RegisterContainer(req RegisterContainerRequest) (string, error) {
	var resp RegisterContainerResponse
	if err := c.call("RegisterContainer", req, &resp); err != nil {
		return "", err
	}
	return resp.ContainerID, nil
}
