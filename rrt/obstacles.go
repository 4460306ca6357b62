package rrt

import (
	"github.com/dhconnelly/rtreego"
	"go.uber.org/multierr"
)

// Obstacles supplies the rectangles that may intersect a query area.
// Implementations may return a superset; callers run the exact test.
type Obstacles interface {
	Candidates(area Rect) []Rect
}

// RectList is a plain obstacle sequence scanned linearly
type RectList []Rect

// Candidates returns every obstacle
func (l RectList) Candidates(Rect) []Rect { return l }

// ValidateObstacles reports every obstacle with a negative or non-finite
// extent. Zero-width walls are allowed.
func ValidateObstacles(rects []Rect) error {
	var err error
	for i, r := range rects {
		if !finite(r.X) || !finite(r.Y) || !finite(r.Width) || !finite(r.Height) || r.Width < 0 || r.Height < 0 {
			err = multierr.Append(err, invalid("obstacle %d (%v, %v) %vx%v must be finite with non-negative sides",
				i, r.X, r.Y, r.Width, r.Height))
		}
	}
	return err
}

// rtreego rejects zero-length sides and treats touching boxes as disjoint,
// so stored boxes and queries are padded by this much.
const indexPadding = 1e-6

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	rect Rect
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// ObstacleIndex keeps obstacles in an R-tree for region queries
type ObstacleIndex struct {
	tree  *rtreego.Rtree
	rects []Rect
}

// NewObstacleIndex builds an index over rects
func NewObstacleIndex(rects []Rect) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, r := range rects {
		bbox, err := toRtreeRect(r, 0)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{rect: r, bbox: bbox})
	}

	return &ObstacleIndex{tree: tree, rects: rects}
}

// Len returns the number of indexed obstacles
func (idx *ObstacleIndex) Len() int { return idx.tree.Size() }

// Rects returns the obstacles the index was built from
func (idx *ObstacleIndex) Rects() []Rect { return idx.rects }

// Candidates returns obstacles whose boxes intersect or touch area
func (idx *ObstacleIndex) Candidates(area Rect) []Rect {
	bbox, err := toRtreeRect(area, indexPadding)
	if err != nil {
		return idx.rects
	}

	results := idx.tree.SearchIntersect(bbox)
	rects := make([]Rect, 0, len(results))
	for _, item := range results {
		rects = append(rects, item.(*obstacleEntry).rect)
	}
	return rects
}

// toRtreeRect converts r into an rtreego box grown by pad on every side
func toRtreeRect(r Rect, pad float64) (rtreego.Rect, error) {
	w := r.Width + 2*pad
	h := r.Height + 2*pad
	if w < indexPadding {
		w = indexPadding
	}
	if h < indexPadding {
		h = indexPadding
	}
	return rtreego.NewRect(
		rtreego.Point{r.X - pad, r.Y - pad},
		[]float64{w, h},
	)
}
