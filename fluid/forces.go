package fluid

// Wake probe tuning. The scan looks upstream (against +x) and on shallow
// diagonals for obstacle cells, out to wakeScanRange cells.
const (
	wakeScanRange = 10
	wakeDrag      = 0.08
	shedFrequency = 4.2
)

// injectForces applies all forcing terms for this step: inlet inflow with
// wobble, wake oscillation behind obstacles, three octaves of background
// curl-noise turbulence, near-boundary perturbation, and open-outflow
// relaxation at the right edge. Solid cells stay zero.
//
// The turbulence octaves are re-injected every step on purpose; they offset
// the exponential decay applied during advection rather than perturbing the
// field once.
func (s *Simulation) injectForces() {
	u, v := s.vel.U, s.vel.V
	un, vn := s.vel.Next()
	w, h := s.w, s.h
	p := &s.p
	dt := p.DT
	clock := s.clock
	clockQ := uint32(int32(clock * 60))
	invW := 1 / float32(w)

	const outflowZone = 0.08

	s.disp.run(h, func(y0, y1 int) {
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
				fx := (float32(x) + 0.5) * invW
				xf := float32(x)
				yf := float32(y)

				// Inlet inflow: ramp from flowSpeed at the left edge down to
				// zero across the inflow width, with a small sinusoidal and
				// hashed wobble so the inflow is never perfectly laminar.
				if p.InflowWidth > 0 && fx < p.InflowWidth {
					ramp := 1 - fx/p.InflowWidth
					target := p.FlowSpeed * ramp
					vx += (target - vx) * 0.35 * ramp
					wob := sinf(clock*1.7+yf*0.45) * 0.08
					wob += (hashCell(x, y, clockQ, 11) - 0.5) * 0.05
					vy += wob * p.FlowSpeed * ramp
				}

				// Wake forcing downstream of obstacles.
				if strength, side := s.wakeProbe(x, y); strength > 0 {
					osc := 0.5*sinf(clock*shedFrequency+xf*0.31) +
						0.3*sinf(clock*shedFrequency*1.83+yf*0.47) +
						0.2*sinf(clock*shedFrequency*2.9+xf*0.11+yf*0.23)
					gust := (hashCell(x, y, clockQ, 23) - 0.5) * 0.3
					vy += side * strength * p.FlowSpeed * (osc + gust) * dt * 6
					// Drag-induced lingering in the wake shadow.
					vx *= 1 - wakeDrag*strength
				}

				// Multi-octave background turbulence, coarse to fine. Each
				// octave gets its own clock phase so they stay independent.
				if p.Turbulence > 0 {
					c1x, c1y := s.noise.Curl(xf, yf, clock*0.05, 0.015)
					c2x, c2y := s.noise.Curl(xf+57, yf+91, clock*0.09, 0.045)
					c3x, c3y := s.noise.Curl(xf+211, yf+173, clock*0.16, 0.11)
					amp := p.Turbulence * p.FlowSpeed * dt
					vx += (c1x*0.5 + c2x*0.3 + c3x*0.2) * amp
					vy += (c1y*0.5 + c2y*0.3 + c3y*0.2) * amp
				}

				// Boundary-layer turbulence: cells near any solid get a
				// vertical noise nudge.
				if s.nearSolid(x, y) {
					vy += (hashCell(x, y, clockQ, 37) - 0.5) * p.FlowSpeed * 0.6 * dt
				}

				// Open outflow at the right edge: damp vertical motion and
				// pull horizontal velocity toward at least half flow speed.
				if fx > 1-outflowZone {
					t := (fx - (1 - outflowZone)) / outflowZone
					vy *= 1 - 0.5*t
					half := 0.5 * p.FlowSpeed
					if vx < half {
						vx += (half - vx) * 0.4 * t
					}
				}

				un[i] = vx
				vn[i] = vy
			}
		}
	})
	s.vel.Swap()
}

// wakeProbe scans upstream for an obstacle cell and returns a falloff
// weighted wake strength plus the side sign for the shedding oscillation.
// The sign comes from which shoulder of the obstacle the cell sits behind;
// when both or neither shoulder is solid the probe is ambiguous and the sign
// alternates in space and time, emulating von Karman shedding.
func (s *Simulation) wakeProbe(x, y int) (strength, side float32) {
	for k := 1; k <= wakeScanRange; k++ {
		dy := (k + 1) / 2
		ox := x - k
		oy := -1
		switch {
		case s.solid(ox, y):
			oy = y
		case s.solid(ox, y-dy):
			oy = y - dy
		case s.solid(ox, y+dy):
			oy = y + dy
		}
		if oy < 0 {
			continue
		}

		strength = 1 - float32(k)/float32(wakeScanRange+1)

		upSolid := s.solid(ox, oy-1)
		downSolid := s.solid(ox, oy+1)
		switch {
		case upSolid && !downSolid:
			side = 1
		case !upSolid && downSolid:
			side = -1
		default:
			if sinf(s.clock*shedFrequency+float32(x)*0.37+float32(y)*0.21) > 0 {
				side = 1
			} else {
				side = -1
			}
		}
		return strength, side
	}
	return 0, 0
}

// nearSolid reports whether any cell within a Chebyshev radius of 2 is
// masked.
func (s *Simulation) nearSolid(x, y int) bool {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if s.solid(x+dx, y+dy) {
				return true
			}
		}
	}
	return false
}
