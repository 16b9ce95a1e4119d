package three

import "math"

// Pi is exported to scripts, which cannot import the math package.
const Pi = math.Pi

// Vector3 is a position, scale or direction.
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 returns (x, y, z).
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Set assigns all components.
func (v *Vector3) Set(x, y, z float64) *Vector3 {
	v.X, v.Y, v.Z = x, y, z
	return v
}

// SetScalar assigns s to every component.
func (v *Vector3) SetScalar(s float64) *Vector3 {
	return v.Set(s, s, s)
}

func (v Vector3) sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) normalize() Vector3 {
	l := v.length()
	if l == 0 {
		return v
	}
	return Vector3{v.X / l, v.Y / l, v.Z / l}
}

func (v Vector3) array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Euler is an XYZ-order rotation in radians.
type Euler struct {
	X, Y, Z float64
}

// Set assigns all angles.
func (e *Euler) Set(x, y, z float64) *Euler {
	e.X, e.Y, e.Z = x, y, z
	return e
}

// quaternion returns the rotation as glTF [x, y, z, w].
func (e Euler) quaternion() [4]float64 {
	c1, c2, c3 := math.Cos(e.X/2), math.Cos(e.Y/2), math.Cos(e.Z/2)
	s1, s2, s3 := math.Sin(e.X/2), math.Sin(e.Y/2), math.Sin(e.Z/2)
	return [4]float64{
		s1*c2*c3 + c1*s2*s3,
		c1*s2*c3 - s1*c2*s3,
		c1*c2*s3 + s1*s2*c3,
		c1*c2*c3 - s1*s2*s3,
	}
}

// lookRotation rotates the -Z axis onto dir.
func lookRotation(dir Vector3) [4]float64 {
	d := dir.normalize()
	if d.length() == 0 {
		return [4]float64{0, 0, 0, 1}
	}
	// from (0,0,-1) to d
	dot := -d.Z
	if dot < -0.999999 {
		return [4]float64{1, 0, 0, 0}
	}
	q := [4]float64{d.Y, -d.X, 0, 1 + dot}
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	return [4]float64{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// Color is an sRGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// NewColor converts a 0xRRGGBB value.
func NewColor(hex int) Color {
	var c Color
	c.SetHex(hex)
	return c
}

// SetHex assigns a 0xRRGGBB value.
func (c *Color) SetHex(hex int) *Color {
	hex &= 0xffffff
	c.R = float64(hex>>16&0xff) / 255
	c.G = float64(hex>>8&0xff) / 255
	c.B = float64(hex&0xff) / 255
	return c
}

// SetRGB assigns components in [0, 1].
func (c *Color) SetRGB(r, g, b float64) *Color {
	c.R, c.G, c.B = clamp01(r), clamp01(g), clamp01(b)
	return c
}

// Hex returns the color as 0xRRGGBB.
func (c Color) Hex() int {
	return int(math.Round(clamp01(c.R)*255))<<16 |
		int(math.Round(clamp01(c.G)*255))<<8 |
		int(math.Round(clamp01(c.B)*255))
}

// linear converts to linear-light components, which is what glTF stores.
func (c Color) linear() [3]float64 {
	return [3]float64{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B)}
}

func srgbToLinear(c float64) float64 {
	c = clamp01(c)
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Sin and Cos let scripts place objects on circles.
func Sin(x float64) float64 { return math.Sin(x) }
func Cos(x float64) float64 { return math.Cos(x) }
