package timeline

import (
	"orrery/internal/interp"
	"orrery/internal/state"
)

// keyframe is one snapshot's document plus the summary shown while it holds.
type keyframe struct {
	Doc     state.Document
	Summary string
}

// frame is one planned output frame. Summary is non-empty only on the first
// hold frame of a snapshot.
type frame struct {
	Index   int
	Doc     state.Document
	Summary string
}

// totalFrameCount is the number of frames for n snapshots. It must be known
// before rendering starts because every frame bakes in a progress indicator.
func totalFrameCount(n, holdFrames, transitionFrames int) int {
	if n <= 0 {
		return 0
	}
	return n*holdFrames + (n-1)*transitionFrames
}

// buildPlan lays out the full frame sequence: holdFrames copies of each
// snapshot followed by transitionFrames interpolated steps toward the next
// one. Transition step k uses t = k/transitionFrames, so t = 1 never occurs;
// that exact state is the first hold frame of the next snapshot.
func buildPlan(keyframes []keyframe, holdFrames, transitionFrames int) []frame {
	plan := make([]frame, 0, totalFrameCount(len(keyframes), holdFrames, transitionFrames))
	index := 0

	for i, kf := range keyframes {
		for h := 0; h < holdFrames; h++ {
			f := frame{Index: index, Doc: kf.Doc}
			if h == 0 {
				f.Summary = kf.Summary
			}
			plan = append(plan, f)
			index++
		}

		if i == len(keyframes)-1 {
			continue
		}
		next := keyframes[i+1].Doc
		for k := 0; k < transitionFrames; k++ {
			t := float64(k) / float64(transitionFrames)
			plan = append(plan, frame{Index: index, Doc: interp.Interpolate(kf.Doc, next, t)})
			index++
		}
	}
	return plan
}
