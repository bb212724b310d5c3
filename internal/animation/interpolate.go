package animation

// Evaluate returns the value of a linearized sequence at frame. Between keys
// the value is interpolated linearly; outside the key range it follows the
// sequence extrapolation (constant holds the end key, linear extends the
// end segment).
func Evaluate(s *Sequence, frame float64) []float64 {
	if len(s.Keys) == 0 {
		return nil
	}
	if len(s.Keys) == 1 {
		return copyValue(s.Keys[0].Value)
	}

	first, last := s.Keys[0], s.Keys[len(s.Keys)-1]

	// До первого ключа
	if frame <= float64(first.Frame) {
		if s.Extrapolation == ExtrapLinear {
			return segment(first, s.Keys[1], frame)
		}
		return copyValue(first.Value)
	}

	// После последнего ключа
	if frame >= float64(last.Frame) {
		if s.Extrapolation == ExtrapLinear {
			return segment(s.Keys[len(s.Keys)-2], last, frame)
		}
		return copyValue(last.Value)
	}

	for i := 0; i < len(s.Keys)-1; i++ {
		if frame >= float64(s.Keys[i].Frame) && frame < float64(s.Keys[i+1].Frame) {
			return segment(s.Keys[i], s.Keys[i+1], frame)
		}
	}
	return copyValue(last.Value)
}

// segment interpolates (or extrapolates) along the line through a and b.
func segment(a, b Keyframe, frame float64) []float64 {
	span := float64(b.Frame - a.Frame)
	if span == 0 {
		return copyValue(a.Value)
	}
	t := (frame - float64(a.Frame)) / span

	out := make([]float64, len(a.Value))
	for i := range out {
		out[i] = lerp(a.Value[i], b.Value[i], t)
	}
	return out
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func copyValue(v []float64) []float64 {
	return append([]float64(nil), v...)
}
