package conversion

// GCD returns the greatest common divisor of |a| and |b|. GCD(a, 0) = |a|.
func GCD(a, b int64) int64 {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns |a*b| / GCD(a, b). LCM with a zero operand is 0; callers
// reject zero factors before getting here.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return abs(a/GCD(a, b)) * abs(b)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
