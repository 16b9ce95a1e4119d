package three

import "math"

// BufferGeometry is an indexed triangle list.
type BufferGeometry struct {
	Type      string
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *BufferGeometry) VertexCount() int { return len(g.Positions) }

// TriangleCount returns the number of triangles.
func (g *BufferGeometry) TriangleCount() int { return len(g.Indices) / 3 }

func (g *BufferGeometry) vertex(p, n Vector3) uint32 {
	g.Positions = append(g.Positions, [3]float32{float32(p.X), float32(p.Y), float32(p.Z)})
	g.Normals = append(g.Normals, [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
	return uint32(len(g.Positions) - 1)
}

func (g *BufferGeometry) triangle(a, b, c uint32) {
	g.Indices = append(g.Indices, a, b, c)
}

func segmentsOr(segments []int, i, fallback, min int) int {
	s := fallback
	if i < len(segments) && segments[i] > 0 {
		s = segments[i]
	}
	if s < min {
		s = min
	}
	return s
}

// NewBoxGeometry creates an axis-aligned box centred on the origin.
func NewBoxGeometry(width, height, depth float64) *BufferGeometry {
	g := &BufferGeometry{Type: "BoxGeometry"}
	half := Vector3{width / 2, height / 2, depth / 2}

	// normal, u, v with u x v = normal so every face winds counter-clockwise
	faces := [6][3]Vector3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range faces {
		n, u, v := f[0], f[1], f[2]
		var idx [4]uint32
		for i, c := range corners {
			p := Vector3{
				(n.X + c[0]*u.X + c[1]*v.X) * half.X,
				(n.Y + c[0]*u.Y + c[1]*v.Y) * half.Y,
				(n.Z + c[0]*u.Z + c[1]*v.Z) * half.Z,
			}
			idx[i] = g.vertex(p, n)
		}
		g.triangle(idx[0], idx[1], idx[2])
		g.triangle(idx[0], idx[2], idx[3])
	}
	return g
}

// NewPlaneGeometry creates a width x height rectangle in the XY plane facing +Z.
func NewPlaneGeometry(width, height float64) *BufferGeometry {
	g := &BufferGeometry{Type: "PlaneGeometry"}
	hw, hh := width/2, height/2
	n := Vector3{0, 0, 1}
	a := g.vertex(Vector3{-hw, hh, 0}, n)
	d := g.vertex(Vector3{hw, hh, 0}, n)
	b := g.vertex(Vector3{-hw, -hh, 0}, n)
	c := g.vertex(Vector3{hw, -hh, 0}, n)
	g.triangle(a, b, d)
	g.triangle(b, c, d)
	return g
}

// NewSphereGeometry creates a UV sphere. Optional segments are
// widthSegments (default 32, min 3) and heightSegments (default 16, min 2).
func NewSphereGeometry(radius float64, segments ...int) *BufferGeometry {
	ws := segmentsOr(segments, 0, 32, 3)
	hs := segmentsOr(segments, 1, 16, 2)
	g := &BufferGeometry{Type: "SphereGeometry"}

	grid := make([][]uint32, hs+1)
	for iy := 0; iy <= hs; iy++ {
		v := float64(iy) / float64(hs)
		grid[iy] = make([]uint32, ws+1)
		for ix := 0; ix <= ws; ix++ {
			u := float64(ix) / float64(ws)
			p := Vector3{
				-radius * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				radius * math.Cos(v*math.Pi),
				radius * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			n := p.normalize()
			if radius < 0 {
				n = Vector3{-n.X, -n.Y, -n.Z}
			}
			grid[iy][ix] = g.vertex(p, n)
		}
	}

	for iy := 0; iy < hs; iy++ {
		for ix := 0; ix < ws; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.triangle(a, b, d)
			}
			if iy != hs-1 {
				g.triangle(b, c, d)
			}
		}
	}
	return g
}

// NewCylinderGeometry creates a capped cylinder along Y. The optional segment
// is radialSegments (default 32, min 3). A zero radius omits that cap.
func NewCylinderGeometry(radiusTop, radiusBottom, height float64, segments ...int) *BufferGeometry {
	rs := segmentsOr(segments, 0, 32, 3)
	g := &BufferGeometry{Type: "CylinderGeometry"}
	buildCylinder(g, radiusTop, radiusBottom, height, rs)
	return g
}

// NewConeGeometry creates a cone with its tip at +height/2.
func NewConeGeometry(radius, height float64, segments ...int) *BufferGeometry {
	rs := segmentsOr(segments, 0, 32, 3)
	g := &BufferGeometry{Type: "ConeGeometry"}
	buildCylinder(g, 0, radius, height, rs)
	return g
}

func buildCylinder(g *BufferGeometry, radiusTop, radiusBottom, height float64, rs int) {
	halfHeight := height / 2
	slope := 0.0
	if height != 0 {
		slope = (radiusBottom - radiusTop) / height
	}

	// torso, one height segment
	rows := [2][]uint32{make([]uint32, rs+1), make([]uint32, rs+1)}
	for y := 0; y <= 1; y++ {
		v := float64(y)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		for x := 0; x <= rs; x++ {
			theta := float64(x) / float64(rs) * 2 * math.Pi
			sin, cos := math.Sin(theta), math.Cos(theta)
			p := Vector3{radius * sin, -v*height + halfHeight, radius * cos}
			n := Vector3{sin, slope, cos}.normalize()
			rows[y][x] = g.vertex(p, n)
		}
	}
	for x := 0; x < rs; x++ {
		a, b := rows[0][x], rows[1][x]
		c, d := rows[1][x+1], rows[0][x+1]
		g.triangle(a, b, d)
		g.triangle(b, c, d)
	}

	if radiusTop > 0 {
		buildCap(g, true, radiusTop, halfHeight, rs)
	}
	if radiusBottom > 0 {
		buildCap(g, false, radiusBottom, halfHeight, rs)
	}
}

func buildCap(g *BufferGeometry, top bool, radius, halfHeight float64, rs int) {
	sign := -1.0
	if top {
		sign = 1
	}
	n := Vector3{0, sign, 0}

	centers := make([]uint32, rs)
	for x := 0; x < rs; x++ {
		centers[x] = g.vertex(Vector3{0, halfHeight * sign, 0}, n)
	}
	edge := make([]uint32, rs+1)
	for x := 0; x <= rs; x++ {
		theta := float64(x) / float64(rs) * 2 * math.Pi
		edge[x] = g.vertex(Vector3{radius * math.Sin(theta), halfHeight * sign, radius * math.Cos(theta)}, n)
	}
	for x := 0; x < rs; x++ {
		c, i := centers[x], edge[x]
		if top {
			g.triangle(i, edge[x+1], c)
		} else {
			g.triangle(edge[x+1], i, c)
		}
	}
}

// NewTorusGeometry creates a torus in the XY plane. Optional segments are
// radialSegments (default 12, min 2) and tubularSegments (default 48, min 3).
func NewTorusGeometry(radius, tube float64, segments ...int) *BufferGeometry {
	radial := segmentsOr(segments, 0, 12, 2)
	tubular := segmentsOr(segments, 1, 48, 3)
	g := &BufferGeometry{Type: "TorusGeometry"}

	for j := 0; j <= radial; j++ {
		v := float64(j) / float64(radial) * 2 * math.Pi
		for i := 0; i <= tubular; i++ {
			u := float64(i) / float64(tubular) * 2 * math.Pi
			p := Vector3{
				(radius + tube*math.Cos(v)) * math.Cos(u),
				(radius + tube*math.Cos(v)) * math.Sin(u),
				tube * math.Sin(v),
			}
			center := Vector3{radius * math.Cos(u), radius * math.Sin(u), 0}
			g.vertex(p, p.sub(center).normalize())
		}
	}

	stride := uint32(tubular + 1)
	for j := uint32(1); j <= uint32(radial); j++ {
		for i := uint32(1); i <= uint32(tubular); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			g.triangle(a, b, d)
			g.triangle(b, c, d)
		}
	}
	return g
}
