package colorpick

import (
	"sync"
	"time"

	"github.com/gogpu/colorpick/surface"
)

// Node is the colour picker configuration of one render node. Setters may
// be called from any goroutine; drawables read it during the prepare pass.
type Node struct {
	id NodeID

	mu     sync.Mutex
	params *Param
}

// NewNode creates a node with colour picking disabled.
func NewNode(id NodeID) *Node {
	return &Node{id: id}
}

// ID returns the node id.
func (n *Node) ID() NodeID {
	return n.id
}

func (n *Node) paramsLocked() *Param {
	if n.params == nil {
		p := DefaultParam()
		n.params = &p
	}
	return n.params
}

// SetColorPickerParams enables (or, with StrategyNone, disables) colour
// picking. The notify threshold and rect are kept.
func (n *Node) SetColorPickerParams(placeholder Placeholder, strategy Strategy, interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.paramsLocked()
	p.Placeholder = placeholder
	p.Strategy = strategy
	p.Interval = interval
}

// SetNotifyThreshold sets the luminance zone bounds used for client
// notification.
func (n *Node) SetNotifyThreshold(t NotifyThreshold) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paramsLocked().NotifyThreshold = t
}

// SetRect restricts sampling to r in local coordinates. Nil samples the
// node's draw bounds.
func (n *Node) SetRect(r *surface.Rect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if r != nil {
		cp := *r
		r = &cp
	}
	n.paramsLocked().Rect = r
}

// ColorPickerParams returns a copy of the params, if any were set.
func (n *Node) ColorPickerParams() (Param, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.params == nil {
		return Param{}, false
	}
	return *n.params, true
}

// setStrategy changes only the strategy and interval.
func (n *Node) setStrategy(strategy Strategy, interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.paramsLocked()
	p.Strategy = strategy
	p.Interval = interval
}
