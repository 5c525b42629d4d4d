package resample

import "math"

const (
	// minRatio keeps the source/destination ratio away from zero.
	minRatio = 1e-9

	// minWeightSum is the smallest weight total still used to normalize.
	minWeightSum = 1e-12
)

// contrib is one source sample's share of a destination sample.
type contrib struct {
	index  int     // clamped source index
	weight float32 // normalized weight
}

// span locates the contribs for one destination coordinate.
type span struct {
	start, end int // contribs[start:end]
}

// weightTable maps every destination coordinate of one axis to its
// source contributions. It is built once per pass and only read afterwards.
type weightTable struct {
	spans    []span
	contribs []contrib
}

// newWeightTable distributes srcLen source samples over dstLen destination
// samples with kernel k. Both lengths must be positive.
func newWeightTable(srcLen, dstLen int, k Kernel) *weightTable {
	ratio := math.Max(float64(srcLen)/float64(dstLen), minRatio)
	scale := math.Max(1, ratio)
	support := k.Support() * scale

	t := &weightTable{
		spans:    make([]span, dstLen),
		contribs: make([]contrib, 0, dstLen*(2*int(math.Ceil(support))+2)),
	}

	var raw []float64
	for d := 0; d < dstLen; d++ {
		s := (float64(d)+0.5)*ratio - 0.5
		lo := int(math.Floor(s - support))
		hi := int(math.Ceil(s + support))

		start := len(t.contribs)
		raw = raw[:0]
		sum := 0.0
		for j := lo; j <= hi; j++ {
			w := k.Weight((s - float64(j)) / scale)
			if w == 0 {
				continue
			}
			raw = append(raw, w)
			sum += w
			t.contribs = append(t.contribs, contrib{index: clampIndex(j, srcLen)})
		}

		if math.Abs(sum) < minWeightSum {
			// Degenerate window: fall back to the nearest source sample.
			t.contribs = append(t.contribs[:start], contrib{
				index:  clampIndex(int(math.Round(s)), srcLen),
				weight: 1,
			})
		} else {
			for i, w := range raw {
				t.contribs[start+i].weight = float32(w / sum)
			}
		}
		t.spans[d] = span{start: start, end: len(t.contribs)}
	}
	return t
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
