// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire implements the length-framed message codec of spec.md §6:
// a 4-byte little-endian frame length, a one-byte message tag, and a fixed
// layout per message variant. Go has no equivalent to the distilled
// original's zero-copy archival format ("rkyv"), so the codec here commits
// a fixed encoding/binary layout as version 1 of the wire format instead.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Tag identifies a frame's payload layout.
type Tag byte

const (
	TagVertex Tag = iota
	TagPartialCoA
	TagAggregatedCoA
	TagSkipVote
)

// MaxFrameSize bounds a single frame's payload to guard against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const MaxFrameSize = 16 << 20 // 16 MiB

var (
	// ErrFrameTooLarge is returned when a frame's declared length exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")
	// ErrEmptyFrame is returned when a frame declares zero length (no tag byte).
	ErrEmptyFrame = errors.New("wire: frame has no tag byte")
)

// WriteFrame writes tag and payload as one length-prefixed frame: a 4-byte
// little-endian length covering the tag byte and payload, then the tag,
// then the payload (spec.md §6).
func WriteFrame(w io.Writer, tag Tag, payload []byte) error {
	length := uint32(1 + len(payload))
	var header [5]byte
	binary.LittleEndian.PutUint32(header[0:4], length)
	header[4] = byte(tag)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("wire: write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and returns its tag and
// payload. Any decode failure (spec.md §7: "Decode error") is returned
// verbatim; the caller is expected to close the connection on error rather
// than attempt resynchronization.
func ReadFrame(r io.Reader) (Tag, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length == 0 {
		return 0, nil, ErrEmptyFrame
	}
	if length > MaxFrameSize {
		return 0, nil, ErrFrameTooLarge
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("wire: read frame payload: %w", err)
	}
	return Tag(buf[0]), buf[1:], nil
}
