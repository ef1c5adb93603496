// Package scan turns raw keyboard input from HID barcode scanners into
// resolved inventory items. Scanner guns type the code as a rapid burst of
// keystrokes followed by Enter, so capture is a matter of timing: keys
// that arrive close together belong to one code, a long pause starts a
// fresh one.
package scan

import (
	"strings"
	"sync"
	"time"
)

// Capture accumulates one keystroke burst per register session.
type Capture struct {
	gap  time.Duration
	Now  func() time.Time
	mu   sync.Mutex
	buf  strings.Builder
	last time.Time
}

// NewCapture constructs a Capture. Keys further apart than gap are treated
// as separate bursts.
func NewCapture(gap time.Duration) *Capture {
	if gap <= 0 {
		gap = time.Second
	}
	return &Capture{gap: gap, Now: time.Now}
}

// Key feeds one keystroke. It returns the completed code when the key is
// Enter and the buffer holds one, otherwise an empty string. Keys longer
// than one character other than Enter are ignored, which filters out
// modifier reports like Shift.
func (c *Capture) Key(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if !c.last.IsZero() && now.Sub(c.last) > c.gap {
		c.buf.Reset()
	}
	c.last = now

	if key == "Enter" {
		code := c.buf.String()
		c.buf.Reset()
		if code == "" {
			return "", false
		}
		return code, true
	}
	if len(key) != 1 {
		return "", false
	}
	c.buf.WriteString(key)
	return "", false
}

// Hub hands out one Capture per register session.
type Hub struct {
	gap      time.Duration
	mu       sync.Mutex
	captures map[string]*Capture
	Now      func() time.Time
}

// NewHub constructs a Hub.
func NewHub(gap time.Duration) *Hub {
	return &Hub{gap: gap, captures: make(map[string]*Capture), Now: time.Now}
}

// Session returns the capture for a session id, creating it on first use.
func (h *Hub) Session(id string) *Capture {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.captures[id]
	if !ok {
		c = NewCapture(h.gap)
		c.Now = h.Now
		h.captures[id] = c
	}
	return c
}
