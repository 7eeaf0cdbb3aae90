package common

import (
	"math"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
)

// Tau is a full turn, in radians.
const Tau = math.Pi * 2

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// NormalizeAngle maps a into [0, Tau).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	return a
}

// WrapAngle maps a into (-Pi, Pi] with a single correction step, the way
// facing angles are kept while rotating.
func WrapAngle(a float64) float64 {
	if a > Tau/2 {
		a -= Tau
	}
	if a < -Tau/2 {
		a += Tau
	}
	return a
}

// AngleCWDiff returns the clockwise distance from a1 to a2.
func AngleCWDiff(a1, a2 float64) float64 {
	a1 = NormalizeAngle(a1)
	a2 = NormalizeAngle(a2)
	if a1 > a2 {
		a1 -= Tau
	}
	return a2 - a1
}

// AngleSmallestDiff returns the smallest distance between two angles.
func AngleSmallestDiff(a1, a2 float64) float64 {
	return math.Pi - math.Abs(math.Abs(NormalizeAngle(a1)-NormalizeAngle(a2))-math.Pi)
}

// AngleBetween is the angle center faces when looking at focus.
func AngleBetween(center, focus cp.Vector) float64 {
	return math.Atan2(focus.Y-center.Y, focus.X-center.X)
}

func AngleToCoordinates(angle, magnitude float64) cp.Vector {
	return cp.ForAngle(angle).Mult(magnitude)
}

func CoordinatesToAngle(v cp.Vector) (angle, magnitude float64) {
	return math.Atan2(v.Y, v.X), v.Length()
}

func RotatePoint(p cp.Vector, angle float64) cp.Vector {
	return p.Rotate(cp.ForAngle(angle))
}

func DegToRad(d float64) float64 { return d * math.Pi / 180 }

func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// S2F parses permissively: leading numeric text counts, garbage yields 0.
func S2F(s string) float64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

func S2I(s string) int {
	return int(S2F(s))
}

// S2B treats "true", "yes", "on" and non-zero numbers as true.
func S2B(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on":
		return true
	}
	return S2F(s) != 0
}

// IsNumber reports whether s is entirely a decimal number.
func IsNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "xXnN_") {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(v, 0)
}

func F2S(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func I2S(i int) string {
	return strconv.Itoa(i)
}

func numericPrefix(s string) int {
	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case (r == '-' || r == '+') && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			if !seenDigit {
				return 0
			}
			return end
		}
		end = i + 1
	}
	if !seenDigit {
		return 0
	}
	return end
}

// CalculateThrow returns the horizontal and vertical speeds that make a
// body thrown from start reach target after peaking maxHeight above start,
// under gravity (negative). When the target is higher than the peak, both
// speeds are zero.
func CalculateThrow(start cp.Vector, startZ float64, target cp.Vector, targetZ, maxHeight, gravity float64) (cp.Vector, float64) {
	if targetZ-startZ > maxHeight || gravity >= 0 {
		return cp.Vector{}, 0
	}
	speedZ := math.Sqrt(-2 * gravity * maxHeight)
	disc := speedZ*speedZ - 2*gravity*(startZ-targetZ)
	t := (-speedZ - math.Sqrt(disc)) / gravity
	if t <= 0 {
		return cp.Vector{}, speedZ
	}
	return target.Sub(start).Mult(1 / t), speedZ
}
