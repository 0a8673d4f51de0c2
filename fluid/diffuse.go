package fluid

// diffuse runs the configured number of Jacobi iterations of implicit
// viscous diffusion. A solid neighbor contributes zero velocity rather than
// the center's own value; that asymmetry is what builds shear layers along
// obstacle rims. The iteration count is fixed, not convergence-checked.
func (s *Simulation) diffuse() {
	alpha := s.p.Viscosity * s.p.DT
	if alpha <= 0 || s.p.DiffusionIters <= 0 {
		return
	}
	inv := 1 / (1 + 4*alpha)
	w, h := s.w, s.h

	for it := 0; it < s.p.DiffusionIters; it++ {
		u, v := s.vel.U, s.vel.V
		un, vn := s.vel.Next()

		s.disp.run(h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					i := y*w + x
					if s.mask[i] != 0 {
						un[i] = 0
						vn[i] = 0
						continue
					}

					var sumU, sumV float32
					if x > 0 && s.mask[i-1] == 0 {
						sumU += u[i-1]
						sumV += v[i-1]
					}
					if x < w-1 && s.mask[i+1] == 0 {
						sumU += u[i+1]
						sumV += v[i+1]
					}
					if y > 0 && s.mask[i-w] == 0 {
						sumU += u[i-w]
						sumV += v[i-w]
					}
					if y < h-1 && s.mask[i+w] == 0 {
						sumU += u[i+w]
						sumV += v[i+w]
					}

					un[i] = (u[i] + alpha*sumU) * inv
					vn[i] = (v[i] + alpha*sumV) * inv
				}
			}
		})
		s.vel.Swap()
	}
}
