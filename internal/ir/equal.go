package ir

// Equal reports whether a and b denote the same JSON value.
//
// Numbers compare by numeric value, so IRInt(2) equals IRFloat(2). A nil
// interface equals IRNull{}. Object key order never matters.
func Equal(a, b IRValue) bool {
	a, b = Normalize(a), Normalize(b)

	switch av := a.(type) {
	case IRNull:
		_, ok := b.(IRNull)
		return ok
	case IRString:
		bv, ok := b.(IRString)
		return ok && av == bv
	case IRBool:
		bv, ok := b.(IRBool)
		return ok && av == bv
	case IRInt:
		switch bv := b.(type) {
		case IRInt:
			return av == bv
		case IRFloat:
			return float64(av) == float64(bv)
		}
		return false
	case IRFloat:
		switch bv := b.(type) {
		case IRFloat:
			return av == bv
		case IRInt:
			return float64(av) == float64(bv)
		}
		return false
	case IRArray:
		bv, ok := b.(IRArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, ok := b.(IRObject)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, present := bv[k]
			if !present || !Equal(elem, other) {
				return false
			}
		}
		return true
	}
	return false
}
