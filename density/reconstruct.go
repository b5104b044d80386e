package density

import (
	"fmt"
	"math"
	"math/big"

	"github.com/defistate/defistate-analytics-go/protocols/uniswapv3/calculator/liquiditymath"
)

// direction of a half-window traversal away from the anchor.
type direction int8

const (
	ascending  direction = 1
	descending direction = -1
)

// checkFunc validates a cumulative value as it is produced. nil disables checking.
type checkFunc func(value *big.Int) error

// Reconstruct rebuilds the dense cumulative profile around anchor from sparse samples.
//
// The anchor position is snapped down to a multiple of w.Step and carries anchor.Value
// unchanged. Walking up, a delta takes effect at its own position. Walking down, the
// delta recorded at a position is removed only when stepping below it.
//
// The result is ordered by position. Inputs are never mutated and every *big.Int in the
// result is freshly allocated. Cumulative values are not checked for sign; see
// ReconstructStrict.
func Reconstruct(anchor Anchor, samples []DeltaSample, w Window) ([]Point, error) {
	return reconstruct(anchor, samples, w, nil)
}

// ReconstructStrict is Reconstruct, but fails as soon as a cumulative value leaves the
// uint128 liquidity range.
func ReconstructStrict(anchor Anchor, samples []DeltaSample, w Window) ([]Point, error) {
	return reconstruct(anchor, samples, w, liquiditymath.Check)
}

func reconstruct(anchor Anchor, samples []DeltaSample, w Window, check checkFunc) ([]Point, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if anchor.Value == nil {
		return nil, ErrNilAnchorValue
	}
	if anchor.Position < w.Min || anchor.Position > w.Max {
		return nil, fmt.Errorf("%w: position %d not in [%d, %d]", ErrAnchorOutOfDomain, anchor.Position, w.Min, w.Max)
	}

	position, err := w.SnapInto(anchor.Position)
	if err != nil {
		return nil, err
	}

	deltas := indexSamples(samples, w)

	active := Point{
		Position: position,
		Value:    new(big.Int).Set(anchor.Value),
		Delta:    deltaAt(deltas, position),
	}
	if check != nil {
		if err := check(active.Value); err != nil {
			return nil, fmt.Errorf("position %d: %w", active.Position, err)
		}
	}

	below, err := traverse(active, deltas, w, descending, check)
	if err != nil {
		return nil, err
	}
	above, err := traverse(active, deltas, w, ascending, check)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(below)+1+len(above))
	for i := len(below) - 1; i >= 0; i-- {
		points = append(points, below[i])
	}
	points = append(points, active)
	points = append(points, above...)
	return points, nil
}

// traverse walks up to w.Size positions away from start in one direction.
// The points are returned in walking order.
func traverse(start Point, deltas map[int64]*big.Int, w Window, dir direction, check checkFunc) ([]Point, error) {
	points := make([]Point, 0, w.stepsAvailable(start.Position, dir))

	prev := start
	for i := 0; i < w.Size; i++ {
		position, ok := w.next(prev.Position, dir)
		if !ok {
			break
		}

		current := Point{
			Position: position,
			Value:    new(big.Int),
			Delta:    deltaAt(deltas, position),
		}

		// The only asymmetry between the two directions: crossing a position upwards
		// activates its own delta, crossing downwards undoes the delta of the position left behind.
		switch dir {
		case ascending:
			current.Value.Add(prev.Value, current.Delta)
		case descending:
			current.Value.Sub(prev.Value, prev.Delta)
		}

		if check != nil {
			if err := check(current.Value); err != nil {
				return nil, fmt.Errorf("position %d: %w", current.Position, err)
			}
		}

		points = append(points, current)
		prev = current
	}

	return points, nil
}

// indexSamples builds the position lookup. Later samples override earlier ones at the
// same position and samples outside the domain are dropped.
func indexSamples(samples []DeltaSample, w Window) map[int64]*big.Int {
	deltas := make(map[int64]*big.Int, len(samples))
	for _, s := range samples {
		if s.Position < w.Min || s.Position > w.Max {
			continue
		}
		if s.Delta == nil {
			delete(deltas, s.Position)
			continue
		}
		deltas[s.Position] = s.Delta
	}
	return deltas
}

// deltaAt returns a copy of the delta at position, or zero.
func deltaAt(deltas map[int64]*big.Int, position int64) *big.Int {
	if d, ok := deltas[position]; ok {
		return new(big.Int).Set(d)
	}
	return new(big.Int)
}

// Snap rounds position down to the nearest multiple of step. step must be positive.
// ok is false when that multiple lies below math.MinInt64.
func Snap(position, step int64) (snapped int64, ok bool) {
	snapped = position / step * step
	if position < 0 && snapped != position {
		if snapped < math.MinInt64+step {
			return 0, false
		}
		snapped -= step
	}
	return snapped, true
}

// ceilMultiple rounds v up to the nearest multiple of step. ok is false when that
// multiple lies above math.MaxInt64.
func ceilMultiple(v, step int64) (int64, bool) {
	c := v / step * step
	if v > 0 && c != v {
		if c > math.MaxInt64-step {
			return 0, false
		}
		c += step
	}
	return c, true
}

func (w Window) validate() error {
	if w.Step <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStep, w.Step)
	}
	if w.Size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindowSize, w.Size)
	}
	if w.Min > w.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidDomain, w.Min, w.Max)
	}
	return nil
}

// SnapInto returns the grid position Reconstruct attaches an anchor at position to:
// position snapped down to a multiple of Step, or the first multiple inside the domain
// when snapping leaves it below Min.
func (w Window) SnapInto(position int64) (int64, error) {
	snapped, ok := Snap(position, w.Step)
	if !ok || snapped < w.Min {
		snapped, ok = ceilMultiple(w.Min, w.Step)
	}
	if !ok || snapped > w.Max {
		return 0, fmt.Errorf("%w: no multiple of %d in [%d, %d]", ErrInvalidDomain, w.Step, w.Min, w.Max)
	}
	return snapped, nil
}

// next returns the neighbouring grid position, or false when it would leave the domain.
func (w Window) next(position int64, dir direction) (int64, bool) {
	if w.room(position, dir) < uint64(w.Step) {
		return 0, false
	}
	return position + int64(dir)*w.Step, true
}

// stepsAvailable bounds the number of points a half window can hold.
func (w Window) stepsAvailable(position int64, dir direction) int {
	steps := w.room(position, dir) / uint64(w.Step)
	if steps < uint64(w.Size) {
		return int(steps)
	}
	return w.Size
}

// room is the distance from position to the domain edge in direction dir.
// Unsigned arithmetic keeps it exact over the whole int64 range.
func (w Window) room(position int64, dir direction) uint64 {
	if dir == ascending {
		return uint64(w.Max) - uint64(position)
	}
	return uint64(position) - uint64(w.Min)
}
