package fluid

// vorticityEpsilon guards the confinement normalization; gradients below it
// produce zero force instead of dividing by a near-zero magnitude.
const vorticityEpsilon = 1e-5

// computeVorticity evaluates the scalar 2D curl of the near-final velocity.
// Solid neighbors contribute zero velocity, masked cells hold zero curl.
func (s *Simulation) computeVorticity() {
	u, v := s.vel.U, s.vel.V
	w, h := s.w, s.h
	vort := s.vort
	absVort := s.absVort

	s.disp.run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if s.mask[i] != 0 {
					vort[i] = 0
					absVort[i] = 0
					continue
				}

				vL := s.neighborU(v, x-1, y, v[i])
				vR := s.neighborU(v, x+1, y, v[i])
				uU := s.neighborU(u, x, y-1, u[i])
				uD := s.neighborU(u, x, y+1, u[i])

				c := 0.5 * ((vR - vL) - (uD - uU))
				vort[i] = c
				if c < 0 {
					c = -c
				}
				absVort[i] = c
			}
		}
	})
}

// confineVorticity adds back small-scale rotational energy lost to numerical
// dissipation. The force is perpendicular to the gradient of |vorticity|,
// scaled by the local curl and the configured strength.
func (s *Simulation) confineVorticity() {
	if s.p.VorticityStrength <= 0 {
		return
	}
	u, v := s.vel.U, s.vel.V
	w, h := s.w, s.h
	vort := s.vort
	absVort := s.absVort
	strength := s.p.VorticityStrength
	dt := s.p.DT

	s.disp.run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if s.mask[i] != 0 {
					continue
				}

				c := absVort[i]
				gx := 0.5 * (s.neighborP(absVort, x+1, y, c) - s.neighborP(absVort, x-1, y, c))
				gy := 0.5 * (s.neighborP(absVort, x, y+1, c) - s.neighborP(absVort, x, y-1, c))

				mag := sqrtf(gx*gx + gy*gy)
				if mag < vorticityEpsilon {
					continue
				}
				nx := gx / mag
				ny := gy / mag

				u[i] += ny * vort[i] * strength * dt
				v[i] += -nx * vort[i] * strength * dt
			}
		}
	})
}
