// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/aether/log"
	"github.com/luxfi/aether/wire"
)

func TestPeerDeliversFramesToListener(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", 16, log.NewNopLogger())
	require.NoError(t, err)
	defer ln.Close()

	peer := NewPeer("p0", ln.Addr(), 16, 20*time.Millisecond, log.NewNopLogger())
	defer peer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, peer.Send(ctx, wire.TagVertex, []byte("payload one")))
	require.NoError(t, peer.Send(ctx, wire.TagAggregatedCoA, []byte("payload two")))

	select {
	case ev := <-ln.Events():
		require.Equal(t, wire.TagVertex, ev.Tag)
		require.Equal(t, []byte("payload one"), ev.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first frame")
	}

	select {
	case ev := <-ln.Events():
		require.Equal(t, wire.TagAggregatedCoA, ev.Tag)
		require.Equal(t, []byte("payload two"), ev.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second frame")
	}
}

func TestPeerReconnectsAfterListenerRestarts(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", 16, log.NewNopLogger())
	require.NoError(t, err)
	addr := ln.Addr()

	peer := NewPeer("p0", addr, 16, 20*time.Millisecond, log.NewNopLogger())
	defer peer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, peer.Send(ctx, wire.TagVertex, []byte("before restart")))

	select {
	case ev := <-ln.Events():
		require.Equal(t, []byte("before restart"), ev.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame before restart")
	}
	ln.Close()

	ln2, err := Listen(addr, 16, log.NewNopLogger())
	require.NoError(t, err)
	defer ln2.Close()

	require.Eventually(t, func() bool {
		sendCtx, sendCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer sendCancel()
		if err := peer.Send(sendCtx, wire.TagVertex, []byte("after restart")); err != nil {
			return false
		}
		select {
		case ev := <-ln2.Events():
			return string(ev.Payload) == "after restart"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)
}
