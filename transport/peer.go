// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport is the network boundary of spec.md §6: TCP with
// TCP_NODELAY, a bounded per-peer outbound channel, and fixed-backoff
// reconnection, framing every message through wire.WriteFrame/ReadFrame.
package transport

import (
	"bufio"
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/aether/log"
	"github.com/luxfi/aether/metrics"
	"github.com/luxfi/aether/wire"
)

// Frame is one outbound message queued for a peer.
type Frame struct {
	Tag     wire.Tag
	Payload []byte
}

// Peer owns one outbound connection to a remote validator: a bounded send
// channel drained by a writer goroutine that flushes only once the channel
// has no more immediately-available messages (spec.md §5, §6:
// "Nagle-style batching at application layer"), and a dial loop that
// retries with a fixed backoff until Close is called.
type Peer struct {
	id      string
	addr    string
	out     chan Frame
	backoff time.Duration
	log     log.Logger

	// Reconnects counts dial attempts after the first, and Connected
	// reports whether the write loop currently holds a live connection.
	// These are process-local counters (spec.md has no exposition
	// requirement for them), so they use the lightweight metrics.Counter/
	// Gauge rather than a prometheus.Registerer plumbed through transport.
	Reconnects metrics.Counter
	Connected  metrics.Gauge

	cancel context.CancelFunc
}

// NewPeer starts dialing addr in the background and returns a Peer whose
// Send enqueues frames for delivery once connected. capacity bounds the
// outbound channel (spec.md §6: "e.g. 100k messages"); backoff is the fixed
// reconnection delay (spec.md §5: "e.g. 500 ms").
func NewPeer(id, addr string, capacity int, backoff time.Duration, logger log.Logger) *Peer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Peer{
		id:         id,
		addr:       addr,
		out:        make(chan Frame, capacity),
		backoff:    backoff,
		log:        logger,
		Reconnects: metrics.NewCounter(),
		Connected:  metrics.NewGauge(),
		cancel:     cancel,
	}
	go p.dialLoop(ctx)
	return p
}

// Send enqueues a frame for delivery, blocking if the outbound channel is
// full (spec.md §7: "Channel full ... block-with-timeout on send").
func (p *Peer) Send(ctx context.Context, tag wire.Tag, payload []byte) error {
	select {
	case p.out <- Frame{Tag: tag, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dial loop and releases resources. Queued frames are
// dropped.
func (p *Peer) Close() {
	p.cancel()
}

func (p *Peer) dialLoop(ctx context.Context) {
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !first {
			p.Reconnects.Inc()
		}
		first = false

		conn, err := net.Dial("tcp", p.addr)
		if err != nil {
			p.log.Debug("dial failed, retrying", zap.String("peer", p.id), zap.String("addr", p.addr), zap.Error(err))
			select {
			case <-time.After(p.backoff):
				continue
			case <-ctx.Done():
				return
			}
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}

		p.Connected.Set(1)
		p.writeLoop(ctx, conn)
		p.Connected.Set(0)
		conn.Close()

		select {
		case <-time.After(p.backoff):
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop drains the outbound channel onto a buffered writer over conn,
// flushing only when the channel is momentarily empty so a burst of
// enqueued frames goes out together (spec.md §5, §6).
func (p *Peer) writeLoop(ctx context.Context, conn net.Conn) {
	w := bufio.NewWriter(conn)
	for {
		select {
		case frame, ok := <-p.out:
			if !ok {
				return
			}
			if err := wire.WriteFrame(w, frame.Tag, frame.Payload); err != nil {
				p.log.Warn("write failed, reconnecting", zap.String("peer", p.id), zap.Error(err))
				return
			}
			if len(p.out) == 0 {
				if err := w.Flush(); err != nil {
					p.log.Warn("write failed, reconnecting", zap.String("peer", p.id), zap.Error(err))
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
