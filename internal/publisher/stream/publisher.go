// Package stream implements a publisher that writes JSON lines to an io.Writer.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Publisher encodes each payload as one JSON object per line.
type Publisher struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// New creates a Publisher writing to w (typically os.Stdout).
func New(w io.Writer) *Publisher {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Publisher{w: w, enc: enc}
}

// Publish marshals the payload to JSON and writes it followed by a newline.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	if p.w == nil {
		return fmt.Errorf("stream publisher has no writer")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish canceled: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(payload); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}
