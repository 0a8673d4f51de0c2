package fluid

// backtraceSubSteps bounds the obstacle-escape walk when a backtraced source
// point lands inside solid geometry.
const backtraceSubSteps = 8

// advect transports velocity along itself using semi-Lagrangian backtracing.
// Each cell traces its source position against the current velocity and
// samples there, scaled by the dissipation factor that models unresolved
// sub-grid loss. Masked cells write zero.
func (s *Simulation) advect() {
	u, v := s.vel.U, s.vel.V
	un, vn := s.vel.Next()
	w := s.w
	dt := s.p.DT
	diss := s.p.Dissipation

	s.disp.run(s.h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if s.mask[i] != 0 {
					un[i] = 0
					vn[i] = 0
					continue
				}

				vx := u[i]
				vy := v[i]
				sx := float32(x) - vx*dt
				sy := float32(y) - vy*dt
				sx, sy = s.safeSource(x, y, vx, vy, sx, sy)

				un[i] = sampleBilinear(u, w, s.h, sx, sy) * diss
				vn[i] = sampleBilinear(v, w, s.h, sx, sy) * diss
			}
		}
	})
	s.vel.Swap()
}

// safeSource returns a source position for backtraced sampling that is
// guaranteed not to lie inside solid geometry. If the naive source is solid,
// it walks back along the current velocity direction in half-cell sub-steps
// until it exits, and falls back to the cell's own position when the step
// budget runs out. Sampling through obstacles would pull velocity across
// solid walls.
func (s *Simulation) safeSource(x, y int, vx, vy, sx, sy float32) (float32, float32) {
	maxX := float32(s.w - 1)
	maxY := float32(s.h - 1)
	sx = clampf(sx, 0, maxX)
	sy = clampf(sy, 0, maxY)
	if !s.solidAtF(sx, sy) {
		return sx, sy
	}

	mag := sqrtf(vx*vx + vy*vy)
	if mag < 1e-6 {
		return float32(x), float32(y)
	}
	stepX := vx / mag * 0.5
	stepY := vy / mag * 0.5

	px, py := sx, sy
	for i := 0; i < backtraceSubSteps; i++ {
		px = clampf(px+stepX, 0, maxX)
		py = clampf(py+stepY, 0, maxY)
		if !s.solidAtF(px, py) {
			return px, py
		}
	}
	return float32(x), float32(y)
}
