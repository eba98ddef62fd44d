package drawing

import (
	"math"

	"github.com/courtplan/courtplan/pkg/core"
)

// HeadLookback is the pixel distance walked back from the tip to find the
// arrowhead's direction. Shorter spans let end-of-stroke touch jitter swing
// the head around.
const HeadLookback = 15.0

// ArrowHead is the tip and pointing angle (radians, pixel space) of an arrow.
type ArrowHead struct {
	Tip   core.Point `json:"tip"`
	Angle float64    `json:"angle"`
}

// HeadFor computes the arrowhead of a stroke given in pixel space. It walks
// backward from the last sample until lookback pixels are covered and points
// the head from there to the tip. ok is false for strokes with no extent.
func HeadFor(px []core.Point, lookback float64) (ArrowHead, bool) {
	if len(px) < 2 {
		return ArrowHead{}, false
	}
	tip := px[len(px)-1]
	base := px[0]
	for i := len(px) - 2; i >= 0; i-- {
		if tip.Dist(px[i]) >= lookback {
			base = px[i]
			break
		}
	}
	if base == tip {
		return ArrowHead{}, false
	}
	return ArrowHead{Tip: tip, Angle: math.Atan2(tip.Y-base.Y, tip.X-base.X)}, true
}
