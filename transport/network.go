// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/aether/log"
	"github.com/luxfi/aether/wire"
)

// Inbound is one decoded frame delivered from a peer connection, paired
// with its tag so the caller can dispatch to the right consensus handler
// without re-parsing.
type Inbound struct {
	Tag     wire.Tag
	Payload []byte
}

// Listener accepts inbound peer connections and decodes frames onto a
// single event channel, preserving per-connection send order (spec.md §5:
// "Messages from one peer over one connection are delivered ... in send
// order"; no ordering is implied across different peers).
type Listener struct {
	ln     net.Listener
	events chan Inbound
	log    log.Logger

	wg sync.WaitGroup
}

// Listen binds addr and begins accepting connections in the background.
// Events decoded from any connection are delivered on the returned
// Listener's Events channel until Close is called.
func Listen(addr string, eventCapacity int, logger log.Logger) (*Listener, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		ln:     ln,
		events: make(chan Inbound, eventCapacity),
		log:    logger,
	}
	l.wg.Add(1)
	go l.acceptLoop()
	return l, nil
}

// Events returns the channel of frames decoded from any accepted
// connection.
func (l *Listener) Events() <-chan Inbound {
	return l.events
}

// Addr returns the address the listener is bound to, useful when Listen was
// given port 0 and the kernel assigned one.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Close stops accepting new connections and closes the listener. Events
// already queued remain readable until drained.
func (l *Listener) Close() error {
	err := l.ln.Close()
	l.wg.Wait()
	close(l.events)
	return err
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return // listener closed
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}
		go l.readLoop(conn)
	}
}

// readLoop decodes frames from conn strictly: any decode failure closes
// the connection and stops further processing of it, per spec.md §7
// ("Decode error ... close connection; log; no state change").
func (l *Listener) readLoop(conn net.Conn) {
	defer conn.Close()
	for {
		tag, payload, err := wire.ReadFrame(conn)
		if err != nil {
			l.log.Debug("connection closed", zap.Error(err))
			return
		}
		l.events <- Inbound{Tag: tag, Payload: payload}
	}
}
