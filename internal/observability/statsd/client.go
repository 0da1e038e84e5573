// Package statsd emits DogStatsD-style counters and timings over UDP.
package statsd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultFlushInterval = time.Second
	// defaultMaxPacketSize keeps a datagram inside a typical 1500 byte MTU.
	defaultMaxPacketSize = 1432
	queueSize            = 1024
)

// Sink describes the minimal interface required to emit metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes how to connect to a StatsD-compatible agent.
type Config struct {
	Enabled       bool
	Address       string
	Prefix        string
	GlobalTags    map[string]string
	FlushInterval time.Duration
	MaxPacketSize int
	Logger        *slog.Logger
}

// Client queues metric lines and sends them in newline-joined batches from a
// single goroutine. Lines are dropped, never blocked on, when the queue is full.
// A nil or disabled Client drops everything.
type Client struct {
	prefix     string
	globalTags map[string]string
	logger     *slog.Logger
	maxPacket  int

	conn     net.Conn
	lines    chan string
	flushReq chan chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
}

var _ Sink = (*Client)(nil)

// NewClient dials the configured agent and starts the sender unless disabled.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		globalTags: cleanTags(cfg.GlobalTags),
		logger:     logger,
		maxPacket:  cfg.MaxPacketSize,
	}
	if c.maxPacket <= 0 {
		c.maxPacket = defaultMaxPacketSize
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	c.conn = conn
	c.lines = make(chan string, queueSize)
	c.flushReq = make(chan chan struct{})
	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.run(interval)
	return c, nil
}

// Enabled reports whether the client actively emits metrics.
func (c *Client) Enabled() bool {
	return c != nil && c.conn != nil && !c.closed.Load()
}

// Dropped returns how many lines were discarded because the queue was full.
func (c *Client) Dropped() int64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}

// Count increments a counter metric.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.enqueue(name, strconv.FormatInt(value, 10)+"|c", tags)
}

// Timing records a timing metric in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.enqueue(name, strconv.FormatFloat(ms, 'f', -1, 64)+"|ms", tags)
}

// Flush sends everything queued so far and waits for the write.
func (c *Client) Flush() {
	if !c.Enabled() {
		return
	}
	ack := make(chan struct{})
	select {
	case c.flushReq <- ack:
		<-ack
	case <-c.done:
	}
}

// Close flushes pending lines and releases the UDP connection. It is idempotent.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.wg.Wait()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) enqueue(name, payload string, tags map[string]string) {
	if !c.Enabled() {
		return
	}
	metric := c.metricName(name)
	if metric == "" {
		return
	}
	line := metric + ":" + payload + formatTags(c.globalTags, tags)

	select {
	case <-c.done:
	case c.lines <- line:
	default:
		c.dropped.Add(1)
	}
}

func (c *Client) run(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case line := <-c.lines:
			c.appendLine(&buf, line)
		case <-ticker.C:
			c.send(&buf)
		case ack := <-c.flushReq:
			c.drain(&buf)
			c.send(&buf)
			close(ack)
		case <-c.done:
			c.drain(&buf)
			c.send(&buf)
			return
		}
	}
}

func (c *Client) drain(buf *bytes.Buffer) {
	for {
		select {
		case line := <-c.lines:
			c.appendLine(buf, line)
		default:
			return
		}
	}
}

// appendLine sends the current batch first if line would push it past maxPacket.
func (c *Client) appendLine(buf *bytes.Buffer, line string) {
	if buf.Len() > 0 && buf.Len()+1+len(line) > c.maxPacket {
		c.send(buf)
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
}

func (c *Client) send(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		c.logger.Debug("statsd write failed", "error", err, "bytes", buf.Len())
	}
	buf.Reset()
}

func (c *Client) metricName(name string) string {
	n := strings.NewReplacer(" ", "_", "/", "_").Replace(strings.TrimSpace(name))
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	n = strings.Trim(n, ".")
	if n == "" || c.prefix == "" {
		return n
	}
	return c.prefix + "." + n
}

// formatTags merges global and local tags (local wins) into a sorted "|#k:v,..." suffix.
func formatTags(global, local map[string]string) string {
	merged := cleanTags(global)
	for k, v := range cleanTags(local) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return ""
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k + ":" + merged[k])
	}
	return b.String()
}

func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
