// Package anidb implements a client for AniDB's UDP API: lazy
// authentication, server-imposed rate limiting, and a cached file-by-hash
// lookup.
package anidb

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Baughn/anidb-rs/db/anidbdb"
	"github.com/Baughn/anidb-rs/pkg/ed2k"
	"github.com/rs/zerolog"
)

// DefaultClientName identifies this implementation to the AniDB API.
const DefaultClientName = "anisortgo"

// DefaultRateLimit is the minimum interval AniDB requires between
// requests from a single client ("flood protection").
const DefaultRateLimit = 4 * time.Second

// DefaultReceiveTimeout bounds how long a single request waits for a
// reply before failing. The original implementation had no timeout at
// all, so a lost reply hung forever; spec.md's design notes call this out
// as something a reimplementation should add.
const DefaultReceiveTimeout = 30 * time.Second

// Client is a session-oriented AniDB UDP client. All exported methods
// except WritePrometheus (which only reads the metric set) acquire the
// client's own lock for their full duration — socket,
// session state, the rate-limit clock, and the cache are only ever
// touched while holding it, so a Client is safe for concurrent use.
type Client struct {
	mu sync.Mutex

	conn *net.UDPConn
	addr *net.UDPAddr

	session   Session
	lastSend  time.Time
	RateLimit time.Duration

	// ReceiveTimeout bounds how long sendWaitReply waits for a reply.
	ReceiveTimeout time.Duration

	// ClientName is sent as the "client" field of AUTH commands.
	ClientName string

	cache *anidbdb.DB
	log   zerolog.Logger

	metrics *clientMetrics
}

// New creates a Client bound to an ephemeral local UDP port and connected
// to addr (host:port), with its response cache stored under cacheDir.
func New(addr, cacheDir string, log zerolog.Logger) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", addr, err)
	}

	cache, err := anidbdb.Open(cacheDir)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &Client{
		conn:           conn,
		addr:           raddr,
		session:        SessionDisconnected{},
		lastSend:       time.Now().Add(-DefaultRateLimit),
		RateLimit:      DefaultRateLimit,
		ReceiveTimeout: DefaultReceiveTimeout,
		ClientName:     DefaultClientName,
		cache:          cache,
		log:            log,
		metrics:        newClientMetrics(),
	}, nil
}

// Close releases the client's socket and cache. Callers should Logout
// first if a session is active.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cerr := c.conn.Close()
	derr := c.cache.Close()
	if cerr != nil {
		return cerr
	}
	return derr
}

// Login stores credentials for a future authenticated call. It performs
// no network I/O — the AUTH exchange is deferred until the first call
// that needs a session (assertSession).
func (c *Client) Login(username, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = SessionPending{User: username, Password: password}
	return nil
}

// Logout ends the current session, if any. If connected, it sends a
// LOGOUT command and waits for (but does not validate) the reply. It is
// idempotent when already disconnected.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.session.(SessionConnected)
	if !ok {
		c.session = SessionDisconnected{}
		return nil
	}

	reply, err := c.sendWaitReply(formatLogout(conn.Token))
	c.session = SessionDisconnected{}
	if err != nil {
		return err
	}
	c.log.Debug().Int32("code", reply.Code).Str("data", reply.Data).Msg("logout reply")
	return nil
}

// FileFromHash looks up file metadata for d, using the response cache
// when possible.
func (c *Client) FileFromHash(d ed2k.Digest) (FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.callCached(formatFileQuery(d))
	if err != nil {
		c.metrics.errorsTotal.Inc()
		return FileRecord{}, err
	}
	return decodeFileReply(reply)
}

// assertSession ensures the client holds a valid session token,
// performing the AUTH exchange if needed. Must be called with c.mu held.
func (c *Client) assertSession() (string, error) {
	switch s := c.session.(type) {
	case SessionConnected:
		return s.Token, nil
	case SessionPending:
		reply, err := c.sendWaitReply(formatLogin(s.User, s.Password, c.ClientName))
		if err != nil {
			return "", err
		}
		c.metrics.authsTotal.Inc()
		token, err := validateAuthReply(reply)
		if err != nil {
			return "", err
		}
		c.session = SessionConnected{Token: token}
		return token, nil
	default:
		return "", ErrNotLoggedIn
	}
}

// callCached serves msg from the cache when possible, otherwise performs
// an authenticated call and (for successful replies only) stores the
// result. msg must not include the "&s=<token>" session suffix — that
// suffix is per-connection and is never part of the cache key.
func (c *Client) callCached(msg string) (ServerReply, error) {
	code, data, err := c.cache.Get(msg)
	if err == nil {
		c.metrics.cacheHitsTotal.Inc()
		return ServerReply{Code: code, Data: data}, nil
	}
	if !errors.Is(err, anidbdb.ErrNotFound) {
		return ServerReply{}, fmt.Errorf("anidb: cache lookup: %w", err)
	}
	c.metrics.cacheMissesTotal.Inc()
	return c.call(msg)
}

// call performs an authenticated request/reply exchange for msg, caching
// the result if it was a success.
func (c *Client) call(msg string) (ServerReply, error) {
	token, err := c.assertSession()
	if err != nil {
		return ServerReply{}, err
	}

	reply, err := c.sendWaitReply(msg + "&s=" + token)
	if err != nil {
		return ServerReply{}, err
	}
	c.log.Debug().Str("query", msg).Int32("code", reply.Code).Msg("received reply")

	// Only cache successful replies: caching an error (e.g. a transient
	// 501, or a 322 multi-match that might resolve on a later, more
	// specific query) would make that failure permanent until the cache
	// is cleared.
	if reply.Code == 220 {
		if err := c.cache.Put(msg, reply.Code, reply.Data); err != nil {
			return ServerReply{}, fmt.Errorf("anidb: cache store: %w", err)
		}
	}
	return reply, nil
}

// sendWaitReply enforces the rate limit, sends message, and waits for a
// single reply datagram. Must be called with c.mu held.
func (c *Client) sendWaitReply(message string) (ServerReply, error) {
	now := time.Now()
	if elapsed := now.Sub(c.lastSend); elapsed < c.RateLimit {
		wait := c.RateLimit - elapsed
		c.metrics.rateLimitWaitsSec.Update(wait.Seconds())
		time.Sleep(wait)
	}
	c.lastSend = time.Now()

	c.metrics.requestsTotal.Inc()
	if _, err := c.conn.Write([]byte(message)); err != nil {
		return ServerReply{}, fmt.Errorf("anidb: send: %w", err)
	}

	if c.ReceiveTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.ReceiveTimeout)); err != nil {
			return ServerReply{}, fmt.Errorf("anidb: set read deadline: %w", err)
		}
	}

	buf := make([]byte, maxReplySize)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ServerReply{}, &ProtocolError{Msg: "timed out waiting for reply", Err: err}
		}
		return ServerReply{}, fmt.Errorf("anidb: receive: %w", err)
	}

	return parseReply(buf[:n])
}
