package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Listener pose and its cross-thread handoff.
 *
 * Description: Navigation runs on a UI thread while the decoder runs
 *		inside a realtime audio callback.  The pose crosses that
 *		boundary through a single atomic pointer slot: the writer
 *		publishes complete immutable snapshots, the audio thread
 *		loads exactly one snapshot per block.  A reader can never
 *		observe a half-written pose, and neither side blocks.
 *
 *------------------------------------------------------------------*/

import (
	"sync/atomic"

	"github.com/golang/geo/r3"
)

// ListenerPose is a listener position and orientation. Yaw is rotation
// around +Y (positive turns toward +X, the right); pitch is elevation
// around the local +X axis after yaw (positive looks up). Radians.
type ListenerPose struct {
	Position r3.Vector
	Yaw      float64
	Pitch    float64
}

// PoseSlot is a single-producer single-consumer pose handoff.
// The zero value holds the origin pose looking front.
type PoseSlot struct {
	p atomic.Pointer[ListenerPose]
}

// Store publishes a complete pose snapshot. Call from the navigation thread.
func (s *PoseSlot) Store(pose ListenerPose) {
	var snap = pose
	s.p.Store(&snap)
}

// Load returns the latest published snapshot. Call from the audio thread;
// changes published during a block take effect at the next block boundary.
func (s *PoseSlot) Load() ListenerPose {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return ListenerPose{}
}
