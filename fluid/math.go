package fluid

import "math"

// clampf clamps a float32 value between min and max.
func clampf(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampi clamps an int value between min and max.
func clampi(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func sinf(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Hypot returns the magnitude of a 2-D vector.
func Hypot(x, y float32) float32 {
	return sqrtf(x*x + y*y)
}
