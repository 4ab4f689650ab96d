// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package worker provides the dedicated picker goroutine.
//
// A Worker runs posted tasks one at a time on a single goroutine, so
// callbacks it executes never race with each other. Tasks carry a priority
// and an optional delay; ready high-priority tasks always run before ready
// low-priority ones, and tasks of equal priority run in posting order.
//
// RateLimiter bounds how many tasks may be accepted per rolling window.
// It is kept separate from Worker because control-plane tasks (dirty
// notifications, catch-up ticks) bypass it.
package worker
