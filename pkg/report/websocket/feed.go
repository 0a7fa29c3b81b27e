// Package websocket streams consumed samples to websocket clients.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/sampleslot/pkg/framework"
	"github.com/robotalks/sampleslot/pkg/msgs"
	"github.com/robotalks/sampleslot/pkg/sample"
)

// DefaultPath is where the feed is served.
const DefaultPath = "/samples"

// DefaultWriteTimeout bounds a single send to a client.
const DefaultWriteTimeout = 5 * time.Second

// Feed sends every consumed sample, encoded as msgs.Sample, to all connected
// clients as a binary message. Each client has its own sender holding at most
// one pending sample, so a slow client only misses samples and never blocks
// Report. Clients failing to receive within WriteTimeout are dropped.
type Feed struct {
	Addr         string
	Path         string
	Session      string
	WriteTimeout time.Duration

	clients map[*websocket.Conn]*client
	lock    sync.Mutex
	seq     atomic.Uint64
}

type client struct {
	conn    *websocket.Conn
	latest  chan []byte
	closeCh chan struct{}
}

// NewFeed creates a Feed listening on addr.
func NewFeed(addr, session string) *Feed {
	return &Feed{Addr: addr, Path: DefaultPath, Session: session, WriteTimeout: DefaultWriteTimeout}
}

// Name implements Named.
func (f *Feed) Name() string {
	return "websocket-feed"
}

// Handler serves websocket clients.
func (f *Feed) Handler() http.Handler {
	return websocket.Handler(f.serve)
}

// Run implements Runnable.
func (f *Feed) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(f.Path, f.Handler())
	srv := &http.Server{Addr: f.Addr, Handler: mux}
	glog.Infof("websocket feed at %s%s", f.Addr, f.Path)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	f.closeAll()
	return err
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.clients)
}

// Waiting implements Reporter.
func (f *Feed) Waiting(context.Context) error {
	return nil
}

// Report implements Reporter. It never waits for clients.
func (f *Feed) Report(_ context.Context, v sample.Sample) error {
	payload, err := msgs.NewSample(v, f.seq.Add(1), f.Session, time.Now()).Encode()
	if err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, c := range f.clients {
		c.offer(payload)
	}
	return nil
}

// offer replaces the pending payload. Callers hold the feed lock.
func (c *client) offer(payload []byte) {
	for {
		select {
		case c.latest <- payload:
			return
		default:
		}
		select {
		case <-c.latest:
		default:
		}
	}
}

func (f *Feed) serve(conn *websocket.Conn) {
	c := &client{
		conn:    conn,
		latest:  make(chan []byte, 1),
		closeCh: make(chan struct{}),
	}
	f.lock.Lock()
	if f.clients == nil {
		f.clients = make(map[*websocket.Conn]*client)
	}
	f.clients[conn] = c
	f.lock.Unlock()
	addr := conn.Request().RemoteAddr
	glog.V(2).Infof("websocket client %s connected", addr)

	// the feed is one-way, reading only detects the client going away
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		f.remove(conn)
	}()

	for {
		select {
		case <-c.closeCh:
			return
		case payload := <-c.latest:
			timeout := f.WriteTimeout
			if timeout <= 0 {
				timeout = DefaultWriteTimeout
			}
			err := conn.SetWriteDeadline(time.Now().Add(timeout))
			if err == nil {
				err = websocket.Message.Send(conn, payload)
			}
			if err != nil {
				glog.V(2).Infof("drop websocket client %s: %v", addr, err)
				f.remove(conn)
				return
			}
		}
	}
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if c, ok := f.clients[conn]; ok {
		delete(f.clients, conn)
		close(c.closeCh)
	}
}

func (f *Feed) closeAll() {
	f.lock.Lock()
	defer f.lock.Unlock()
	for conn, c := range f.clients {
		delete(f.clients, conn)
		close(c.closeCh)
	}
}
