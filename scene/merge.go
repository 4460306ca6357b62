package scene

import "rrt-planner/rrt"

// RemoveContained drops obstacles that lie entirely inside another obstacle.
// Collision answers are unchanged since any footprint touching a dropped
// rectangle also touches the one containing it. Of two identical
// rectangles the first is kept.
func RemoveContained(rects []rrt.Rect) []rrt.Rect {
	if len(rects) <= 1 {
		return rects
	}

	unique := make([]rrt.Rect, 0, len(rects))
	seen := make(map[rrt.Rect]bool, len(rects))
	for _, r := range rects {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}

	// a container always intersects what it contains, so the index
	// candidates are enough
	index := rrt.NewObstacleIndex(unique)
	result := make([]rrt.Rect, 0, len(unique))
	for _, r := range unique {
		contained := false
		for _, c := range index.Candidates(r) {
			if c != r && c.Contains(r) {
				contained = true
				break
			}
		}
		if !contained {
			result = append(result, r)
		}
	}
	return result
}
