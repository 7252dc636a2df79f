package common

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// FirstOr returns the first element of the slice, or fallback if empty.
func FirstOr[S ~[]E, E any](s S, fallback E) E {
	if v, ok := First(s); ok {
		return v
	}

	return fallback
}
