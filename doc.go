// Package colorpick samples rendered background colours for a compositor
// without blocking the render goroutine.
//
// # Overview
//
// A node that wants to adapt to what is drawn behind it (contrast text,
// tinted surfaces, accents) sets colour picker params on its Node. The
// compositor owns one Runtime and one Drawable per such node. Every frame:
//
//	need, sync := d.PrepareForExecution(vsyncNanos, darkMode) // prepare pass
//	d.OnSync()                                                // sync pass
//	d.OnDraw(canvas, bounds)                                  // draw pass
//
// PrepareForExecution applies the node's cooldown interval. When a sample is
// due, OnDraw snapshots the region under the node and hands it to the
// Runtime's picker worker, either through an Accelerator or by reading the
// pixels back once the surface flush completes. The result reaches the
// node's Manager, and OnDraw keeps publishing the manager's colour to the
// canvas through ColorPickedSink.
//
// # Managers
//
// ContrastManager turns samples into a black or white contrast colour with
// hysteresis and animates changes over AnimationDuration. ZoneManager,
// used with StrategyClientCallback, classifies the sampled luminance into
// dark, neutral and light zones and notifies a client only when the zone
// changes; ClientCallbacks routes those notifications to per-node
// callbacks.
//
// # Backpressure
//
// Read-back tasks are rate limited (20 per second by default). Dropped
// samples are not errors: the next cooldown retries them. Nothing in this
// package panics or returns errors for sampling failures; a node keeps its
// last good colour instead.
//
// # Quick Start
//
//	rt := colorpick.NewRuntime()
//	defer rt.Close()
//	rt.RegisterNodeDirtyCallback(graph.MarkDirty)
//
//	node := colorpick.NewNode(42)
//	node.SetColorPickerParams(colorpick.PlaceholderTextContrast, colorpick.StrategyContrast, 500*time.Millisecond)
//	d := colorpick.NewDrawable(rt, node)
package colorpick
