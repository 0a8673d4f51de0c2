package fluid

// enforceBoundaries applies the no-penetration condition in place. Solid
// cells are forced to exactly zero velocity; fluid cells adjacent to a solid
// neighbor lose the velocity component pointing into it. Tangential flow
// along walls is left alone, which is what distinguishes this from the
// no-slip treatment inside diffusion.
//
// Runs twice per step: before divergence so the pressure solve sees valid
// boundary velocities, and again after gradient subtraction as cleanup.
func (s *Simulation) enforceBoundaries() {
	u, v := s.vel.U, s.vel.V
	w, h := s.w, s.h

	s.disp.run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if s.mask[i] != 0 {
					u[i] = 0
					v[i] = 0
					continue
				}

				if u[i] < 0 && s.solid(x-1, y) {
					u[i] = 0
				}
				if u[i] > 0 && s.solid(x+1, y) {
					u[i] = 0
				}
				if v[i] < 0 && s.solid(x, y-1) {
					v[i] = 0
				}
				if v[i] > 0 && s.solid(x, y+1) {
					v[i] = 0
				}
			}
		}
	})
}
