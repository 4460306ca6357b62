package scene

import (
	"io"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"rrt-planner/rrt"
)

// Feature roles carried in the "role" property
const (
	RoleObstacle = "obstacle"
	RoleBounds   = "bounds"
	RoleStart    = "start"
	RoleGoal     = "goal"
	RoleTree     = "tree"
	RolePath     = "path"
)

// LoadGeoJSON reads a FeatureCollection. Every areal feature becomes an
// obstacle covering its bounding box unless its role says otherwise; point
// features with role start or goal set the endpoints.
func LoadGeoJSON(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read geojson")
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse geojson")
	}

	s := &Scene{}
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		role := feature.Properties.MustString("role", RoleObstacle)

		switch role {
		case RoleStart, RoleGoal:
			pt, ok := feature.Geometry.(orb.Point)
			if !ok {
				log.Printf("⚠️  %s feature is a %s, expected Point\n", role, feature.Geometry.GeoJSONType())
				continue
			}
			p := rrt.Point{X: pt.X(), Y: pt.Y()}
			if role == RoleStart {
				s.Start = &p
			} else {
				s.Goal = &p
			}

		case RoleBounds:
			s.Bounds = fromBound(feature.Geometry.Bound())

		case RoleObstacle:
			if feature.Geometry.Dimensions() < 1 {
				continue
			}
			s.Obstacles = append(s.Obstacles, fromBound(feature.Geometry.Bound()))

		default:
			// tree and path features from ToGeoJSON are output only
		}
	}

	return s, nil
}

// ToGeoJSON renders a scene and, when given, a tree and path
func ToGeoJSON(s *Scene, tree *rrt.Tree, path []rrt.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if s.Bounds.Width > 0 && s.Bounds.Height > 0 {
		fc.Append(withRole(geojson.NewFeature(toBound(s.Bounds).ToPolygon()), RoleBounds))
	}
	for _, obstacle := range s.Obstacles {
		fc.Append(withRole(geojson.NewFeature(toBound(obstacle).ToPolygon()), RoleObstacle))
	}
	if s.Start != nil {
		fc.Append(withRole(geojson.NewFeature(toPoint(*s.Start)), RoleStart))
	}
	if s.Goal != nil {
		fc.Append(withRole(geojson.NewFeature(toPoint(*s.Goal)), RoleGoal))
	}

	if tree != nil && tree.Len() > 1 {
		edges := tree.Edges()
		lines := make(orb.MultiLineString, 0, len(edges))
		for _, e := range edges {
			lines = append(lines, orb.LineString{toPoint(e[0]), toPoint(e[1])})
		}
		f := withRole(geojson.NewFeature(lines), RoleTree)
		f.Properties["numNodes"] = tree.Len()
		fc.Append(f)
	}

	if len(path) > 0 {
		line := make(orb.LineString, 0, len(path))
		for _, p := range path {
			line = append(line, toPoint(p))
		}
		f := withRole(geojson.NewFeature(line), RolePath)
		f.Properties["length"] = rrt.Length(path)
		fc.Append(f)
	}

	return fc
}

func withRole(f *geojson.Feature, role string) *geojson.Feature {
	f.Properties["role"] = role
	return f
}

func fromBound(b orb.Bound) rrt.Rect {
	return rrt.Rect{
		X:      b.Min.X(),
		Y:      b.Min.Y(),
		Width:  b.Max.X() - b.Min.X(),
		Height: b.Max.Y() - b.Min.Y(),
	}
}

func toBound(r rrt.Rect) orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.X, r.Y},
		Max: orb.Point{r.MaxX(), r.MaxY()},
	}
}

func toPoint(p rrt.Point) orb.Point {
	return orb.Point{p.X, p.Y}
}
