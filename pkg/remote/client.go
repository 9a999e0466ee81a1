package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/scenelink/pkg/boundary"
)

// Client is a boundary.Boundary backed by a websocket connection. Calls are
// sent one at a time; a Client may be shared between goroutines.
type Client struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	seq     uint64
	timeout time.Duration

	connected bool
}

// Dial connects to a scene host at url (ws:// or wss://). timeout bounds each
// call's write and read; zero means no limit.
func Dial(ctx context.Context, url string, timeout time.Duration) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &Client{conn: conn, timeout: timeout, connected: true}, nil
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Cross sends call and waits for its reply. Engine errors come back wrapping
// the same sentinels the engine used. A transport failure closes the client.
func (c *Client) Cross(call boundary.Call) (boundary.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return boundary.Reply{}, boundary.ErrClosed
	}

	c.seq++
	seq := c.seq
	if err := c.conn.SetWriteDeadline(c.deadline()); err != nil {
		return boundary.Reply{}, c.fail(err)
	}
	if err := c.conn.WriteJSON(request{Seq: seq, Call: call}); err != nil {
		return boundary.Reply{}, c.fail(fmt.Errorf("sending %s: %w", call.Op, err))
	}

	var resp response
	if err := c.conn.SetReadDeadline(c.deadline()); err != nil {
		return boundary.Reply{}, c.fail(err)
	}
	if err := c.conn.ReadJSON(&resp); err != nil {
		return boundary.Reply{}, c.fail(fmt.Errorf("waiting for %s: %w", call.Op, err))
	}
	if resp.Seq != seq {
		return boundary.Reply{}, c.fail(fmt.Errorf("reply %d out of order, want %d", resp.Seq, seq))
	}
	return resp.result()
}

func (c *Client) deadline() time.Time {
	if c.timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.timeout)
}

// fail drops the connection after a transport error. Must hold mu.
func (c *Client) fail(err error) error {
	c.connected = false
	c.conn.Close()
	return fmt.Errorf("%w: %w", boundary.ErrClosed, err)
}

// Close says goodbye to the server and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err := c.conn.Close(); err != nil {
		return err
	}
	return werr
}
