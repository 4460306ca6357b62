package rrt

// Smooth densifies a polyline by inserting subdivisions-1 evenly spaced
// points between each pair of consecutive waypoints. The geometry is
// unchanged; subdivisions == 1 returns a copy of waypoints.
func Smooth(waypoints []Point, subdivisions int) ([]Point, error) {
	if subdivisions < 1 {
		return nil, invalid("subdivisions %d must be at least 1", subdivisions)
	}
	if len(waypoints) == 0 {
		return []Point{}, nil
	}

	smoothed := make([]Point, 0, (len(waypoints)-1)*subdivisions+1)
	smoothed = append(smoothed, waypoints[0])
	for i := 0; i < len(waypoints)-1; i++ {
		a, b := waypoints[i], waypoints[i+1]
		for j := 1; j < subdivisions; j++ {
			smoothed = append(smoothed, a.Lerp(b, float64(j)/float64(subdivisions)))
		}
		// exact endpoint, not a.Lerp(b, 1)
		smoothed = append(smoothed, b)
	}
	return smoothed, nil
}

// Length returns the total length of a polyline
func Length(path []Point) float64 {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		total += path[i].Distance(path[i+1])
	}
	return total
}
