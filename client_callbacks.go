package colorpick

import (
	"errors"
	"sync"
	"time"
)

// ColorPickerCallback receives the background luminance (0..255) of a node
// whenever it moves into a different zone.
type ColorPickerCallback func(luminance uint32)

// ErrNilCallback is returned when registering a nil node or callback.
var ErrNilCallback = errors.New("colorpick: nil node or callback")

type clientEntry struct {
	cb       ColorPickerCallback
	debounce time.Duration

	lastDelivery time.Time
	pending      uint32
	hasPending   bool
	timer        *time.Timer
}

// ClientCallbacks routes Runtime.NotifyClient events to per-node callbacks,
// coalescing bursts within each node's debounce window. The latest value
// of a burst is delivered when the window ends.
type ClientCallbacks struct {
	rt *Runtime

	mu      sync.Mutex
	entries map[NodeID]*clientEntry
	closed  bool
}

// NewClientCallbacks creates a dispatcher and registers it as rt's notify
// client callback.
func NewClientCallbacks(rt *Runtime) *ClientCallbacks {
	c := &ClientCallbacks{rt: rt, entries: make(map[NodeID]*clientEntry)}
	rt.RegisterNotifyClientCallback(c.dispatch)
	return c
}

// RegisterColorPickerCallback switches node to StrategyClientCallback with
// the given sampling interval and routes its zone changes to cb. A second
// registration replaces the first.
func (c *ClientCallbacks) RegisterColorPickerCallback(node *Node, interval time.Duration, cb ColorPickerCallback, debounce time.Duration) error {
	if node == nil || cb == nil {
		return ErrNilCallback
	}
	c.mu.Lock()
	if old, ok := c.entries[node.ID()]; ok && old.timer != nil {
		old.timer.Stop()
	}
	c.entries[node.ID()] = &clientEntry{cb: cb, debounce: max(debounce, 0)}
	c.mu.Unlock()

	node.setStrategy(StrategyClientCallback, interval)
	return nil
}

// UnregisterColorPickerCallback removes node's callback and disables its
// colour picking.
func (c *ClientCallbacks) UnregisterColorPickerCallback(node *Node) {
	if node == nil {
		return
	}
	c.mu.Lock()
	if e, ok := c.entries[node.ID()]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.entries, node.ID())
	}
	c.mu.Unlock()

	node.setStrategy(StrategyNone, 0)
}

// HasColorPickerCallback reports whether node has a callback.
func (c *ClientCallbacks) HasColorPickerCallback(node *Node) bool {
	if node == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[node.ID()]
	return ok
}

// Close stops pending deliveries and detaches from the runtime.
func (c *ClientCallbacks) Close() {
	c.rt.RegisterNotifyClientCallback(nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.entries, id)
	}
}

func (c *ClientCallbacks) dispatch(id NodeID, lum uint32) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	now := time.Now()
	if e.debounce == 0 || now.Sub(e.lastDelivery) >= e.debounce {
		e.lastDelivery = now
		e.hasPending = false
		cb := e.cb
		c.mu.Unlock()
		cb(lum)
		return
	}
	e.pending = lum
	e.hasPending = true
	if e.timer == nil {
		wait := e.debounce - now.Sub(e.lastDelivery)
		e.timer = time.AfterFunc(wait, func() { c.flush(id, e) })
	}
	c.mu.Unlock()
}

// flush delivers the trailing value of a debounced burst.
func (c *ClientCallbacks) flush(id NodeID, e *clientEntry) {
	c.mu.Lock()
	e.timer = nil
	if c.closed || c.entries[id] != e || !e.hasPending {
		c.mu.Unlock()
		return
	}
	lum := e.pending
	e.hasPending = false
	e.lastDelivery = time.Now()
	cb := e.cb
	c.mu.Unlock()
	cb(lum)
}
