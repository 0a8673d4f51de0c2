package fluid

// Obstacle is a circular solid region in render-space coordinates. The
// surrounding simulation layer uses these for its biological cell entities;
// here they only matter as boundary geometry.
type Obstacle struct {
	X, Y float32 // center, render pixels
	R    float32 // radius, render pixels
}

// UploadObstacles rebuilds the boundary mask from the obstacle list plus the
// channel wall bands. Safe to call at any frame boundary; must not be called
// while Step is running. Obstacles with radius <= 0 contribute no cells.
func (s *Simulation) UploadObstacles(obstacles []Obstacle, wallThickness int) {
	if !s.initialized {
		return
	}
	s.obstacles = append(s.obstacles[:0], obstacles...)
	s.wallThickness = wallThickness
	rasterizeMask(s.mask, s.w, s.h, s.cellSize, obstacles, wallThickness, s.p.ObstacleShrink)
}

// rasterizeMask fills mask with 1 for solid cells and 0 for fluid cells.
// Wall bands are tested first; obstacle circles are shrunk by the configured
// factor so a boundary layer can form along their rim. O(cells x obstacles),
// which is fine because rasterization only runs when the obstacle set
// changes, never per frame.
func rasterizeMask(mask []uint8, w, h int, cellSize float32, obstacles []Obstacle, wallThickness int, shrink float32) {
	if wallThickness < 0 {
		wallThickness = 0
	}
	if shrink <= 0 {
		shrink = 1
	}

	for y := 0; y < h; y++ {
		wall := y < wallThickness || y >= h-wallThickness
		cy := (float32(y) + 0.5) * cellSize
		for x := 0; x < w; x++ {
			i := y*w + x
			if wall {
				mask[i] = 1
				continue
			}
			mask[i] = 0

			cx := (float32(x) + 0.5) * cellSize
			for _, ob := range obstacles {
				if ob.R <= 0 {
					continue
				}
				r := ob.R * shrink
				dx := cx - ob.X
				dy := cy - ob.Y
				if dx*dx+dy*dy <= r*r {
					mask[i] = 1
					break
				}
			}
		}
	}
}

// solid reports whether the cell at integer coordinates is masked. Out of
// range coordinates are treated as fluid; the open inlet and outlet edges
// are not walls.
func (s *Simulation) solid(x, y int) bool {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return false
	}
	return s.mask[y*s.w+x] != 0
}

// solidAtF reports whether the cell containing a fractional coordinate is
// masked.
func (s *Simulation) solidAtF(x, y float32) bool {
	return s.solid(int(x+0.5), int(y+0.5))
}
