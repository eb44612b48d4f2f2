// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// readBufferSize is the transport read size. Records are small; one read
// typically carries several complete lines.
const readBufferSize = 4096

// Callback receives each decoded event in arrival order.
type Callback func(Event)

// Reader drives a Decoder from an io.Reader (usually the HTTP response
// body) and delivers decoded events to a callback.
type Reader struct {
	src     io.Reader
	decoder *Decoder
}

// NewReader creates a reader for one response stream.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src:     src,
		decoder: NewDecoder(),
	}
}

// Process reads until a terminal event, EOF, or context cancellation.
// Blocks; run it on its own goroutine and feed the callback into the UI
// loop. Returns nil on a terminal event or clean EOF.
func (r *Reader) Process(ctx context.Context, callback Callback) error {
	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			n, err := r.src.Read(buf)
			if n > 0 {
				for _, ev := range r.decoder.Feed(string(buf[:n])) {
					callback(ev)
					if Terminal(ev) {
						return nil
					}
				}
			}
			if err != nil {
				if err == io.EOF {
					// A final record without a trailing newline is
					// complete once the transport closes.
					for _, ev := range r.decoder.Flush() {
						callback(ev)
					}
					return nil
				}
				return err
			}
		}
	}
}

// Terminated reports whether a terminal record was decoded.
func (r *Reader) Terminated() bool {
	return r.decoder.Terminated()
}
