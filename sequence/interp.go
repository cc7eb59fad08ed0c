package sequence

// interpIndex linearly interpolates xElem (indexed 0..len-1) at a
// fractional index, clamping at the array ends.
func interpIndex(xElem []float64, idx float64) float64 {
	n := len(xElem)
	if idx <= 0 {
		return xElem[0]
	}
	if idx >= float64(n-1) {
		return xElem[n-1]
	}
	lo := int(idx)
	frac := idx - float64(lo)
	return xElem[lo]*(1-frac) + xElem[lo+1]*frac
}

// InterpIndex exports interpIndex for use by other packages that need
// the same "position at fractional element index" interpolation.
func InterpIndex(xElem []float64, idx float64) float64 { return interpIndex(xElem, idx) }

// InterpPositionToIndex inverts InterpIndex: given a position in
// meters, returns the 0-based fractional element index that a
// uniformly spaced xElem grid would need to reach it.
func InterpPositionToIndex(xElem []float64, pos float64) float64 {
	n := len(xElem)
	if n < 2 {
		return 0
	}
	spacing := xElem[1] - xElem[0]
	idx0 := (pos - xElem[0]) / spacing
	if idx0 < 0 {
		idx0 = 0
	}
	if idx0 > float64(n-1) {
		idx0 = float64(n - 1)
	}
	return idx0
}
