package colorpick

import "time"

// schedulerStaging is written by the prepare pass.
type schedulerStaging struct {
	params          *Param
	needColorPick   bool
	darkMode        bool
	isTaskScheduled bool
}

// schedulerActive is what the draw pass sees after Sync.
type schedulerActive struct {
	params        Param
	needColorPick bool
	darkMode      bool
}

// Scheduler decides once per vsync whether a node should be sampled.
//
// It is double buffered: SetParams, SetIsSystemDarkColorMode and
// PrepareForExecution update the staging half, and Sync publishes it to the
// active half read by the draw pass. A Scheduler is not safe for concurrent
// use; the render graph calls it from one goroutine.
type Scheduler struct {
	rt     *Runtime
	nodeID NodeID

	staging schedulerStaging
	active  schedulerActive

	// lastUpdateTime is the vsync time in ms of the last triggered sample;
	// it is only meaningful once sampled is set.
	lastUpdateTime int64
	sampled        bool
	needSync       bool
}

// NewScheduler creates a scheduler for node id with no params staged.
func NewScheduler(rt *Runtime, id NodeID) *Scheduler {
	return &Scheduler{
		rt:     rt,
		nodeID: id,
		active: schedulerActive{params: DefaultParam()},
	}
}

// SetParams stages a copy of p. Nil clears the staged params.
func (s *Scheduler) SetParams(p *Param) {
	if p == nil {
		s.staging.params = nil
	} else {
		cp := *p
		s.staging.params = &cp
	}
	s.needSync = true
}

// SetIsSystemDarkColorMode stages the system dark mode flag.
func (s *Scheduler) SetIsSystemDarkColorMode(dark bool) {
	if s.staging.darkMode == dark {
		return
	}
	s.staging.darkMode = dark
	s.needSync = true
}

// PrepareForExecution evaluates the cooldown at vsync time vsyncNanos.
//
// needColorPick is true on the first enabled call and whenever the
// interval since the last sample has elapsed. Inside the cooldown a single delayed dirty notification is
// queued so the node is looked at again once the cooldown ends, even if no
// other frame arrives. needSync is true when needColorPick or the dark mode
// changed since the previous call.
func (s *Scheduler) PrepareForExecution(vsyncNanos int64, darkMode bool) (needColorPick, needSync bool) {
	nowMs := vsyncNanos / int64(time.Millisecond)
	prevNeed := s.staging.needColorPick
	prevDark := s.staging.darkMode
	s.staging.darkMode = darkMode

	p := s.staging.params
	switch {
	case p == nil || !p.Enabled():
		s.staging.needColorPick = false
	case !s.sampled || nowMs >= s.lastUpdateTime+p.intervalMs():
		s.staging.needColorPick = true
		s.lastUpdateTime = nowMs
		s.sampled = true
		s.staging.isTaskScheduled = false
	default:
		s.staging.needColorPick = false
		if !s.staging.isTaskScheduled {
			delay := s.lastUpdateTime + p.intervalMs() - nowMs
			s.staging.isTaskScheduled = true
			id := s.nodeID
			s.rt.postCatchUp(func() { s.rt.NotifyNodeDirty(id) }, time.Duration(delay)*time.Millisecond)
		}
	}

	needSync = s.staging.needColorPick != prevNeed || darkMode != prevDark
	if needSync {
		s.needSync = true
	}
	return s.staging.needColorPick, needSync
}

// Sync publishes the staging half if anything changed, pushing the dark
// mode flag into m.
func (s *Scheduler) Sync(m Manager) {
	if !s.needSync {
		return
	}
	if s.staging.params != nil {
		s.active.params = *s.staging.params
	} else {
		s.active.params = DefaultParam()
	}
	s.active.needColorPick = s.staging.needColorPick
	s.active.darkMode = s.staging.darkMode
	if m != nil {
		m.SetSystemDarkColorMode(s.active.darkMode)
	}
	s.needSync = false
}

// Active returns the params and sample flag visible to the draw pass.
func (s *Scheduler) Active() (Param, bool) {
	return s.active.params, s.active.needColorPick
}

// NeedSync reports whether staged state is waiting for Sync.
func (s *Scheduler) NeedSync() bool {
	return s.needSync
}

// LastUpdateTime returns the vsync time in ms of the last triggered sample.
func (s *Scheduler) LastUpdateTime() int64 {
	return s.lastUpdateTime
}

// IsTaskScheduled reports whether a catch-up notification is pending for
// the current cooldown.
func (s *Scheduler) IsTaskScheduled() bool {
	return s.staging.isTaskScheduled
}
