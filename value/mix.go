package value

// MixFunc returns the value at progress p between two endpoints.
type MixFunc func(p float64) Value

// Mix builds a mixer between two keyframes.
//
// Numbers interpolate linearly. Colours blend in linear RGB. Strings sharing a
// template ("10px 20px" -> "30px 0px") interpolate each embedded number and
// colour. Anything else switches to the target as soon as p > 0.
func Mix(from, to Value) MixFunc {
	if from.kind == KindNumber && to.kind == KindNumber {
		a, b := from.num, to.num
		return func(p float64) Value {
			return Number(MixNumber(a, b, p))
		}
	}
	if from.kind != KindString || to.kind != KindString {
		return mixImmediate(from, to)
	}

	if fc, ok := ParseColor(from.str); ok {
		if tc, ok := ParseColor(to.str); ok {
			return func(p float64) Value {
				return String(MixColor(fc, tc, p).String())
			}
		}
	}

	fcv := parseComplex(from.str)
	tcv := parseComplex(to.str)
	if len(fcv.tokens) == 0 || !fcv.matches(tcv) {
		return mixImmediate(from, to)
	}
	return func(p float64) Value {
		out := make([]token, len(fcv.tokens))
		for i, ft := range fcv.tokens {
			tt := tcv.tokens[i]
			if ft.isColor {
				out[i] = token{isColor: true, color: MixColor(ft.color, tt.color, p)}
			} else {
				out[i] = token{num: MixNumber(ft.num, tt.num, p)}
			}
		}
		return String(tcv.format(out))
	}
}

// MixNumber linearly interpolates between two numbers.
func MixNumber(from, to, p float64) float64 {
	return from + (to-from)*p
}

func mixImmediate(from, to Value) MixFunc {
	return func(p float64) Value {
		if p > 0 {
			return to
		}
		return from
	}
}
