package scene

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"

	"rrt-planner/rrt"
)

// LoadSVG reads obstacles from the <rect> elements of an SVG document,
// descending into groups. The viewBox becomes the bounds, or the canvas
// width and height when there is none.
// Circles whose id is "start" or "goal" set the endpoints. Transforms are
// not supported.
func LoadSVG(r io.Reader) (*Scene, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read svg")
	}
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse svg")
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to parse svg")
	}

	bounds, err := parseBounds(elt)
	if err != nil {
		return nil, err
	}
	s := &Scene{Bounds: bounds}
	return s, parseElements(s, elt)
}

func parseBounds(e *svgparser.Element) (rrt.Rect, error) {
	var ferr error
	pf := floatParser(&ferr)

	if vb, ok := e.Attributes["viewBox"]; ok {
		fields := strings.FieldsFunc(vb, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
		if len(fields) != 4 {
			return rrt.Rect{}, errors.Errorf("bad viewBox %q", vb)
		}
		b := rrt.Rect{X: pf(fields[0]), Y: pf(fields[1]), Width: pf(fields[2]), Height: pf(fields[3])}
		if ferr != nil {
			return rrt.Rect{}, errors.Wrapf(ferr, "bad viewBox %q", vb)
		}
		return b, nil
	}

	if _, ok := e.Attributes["width"]; !ok {
		return rrt.Rect{}, nil
	}
	b := rrt.Rect{Width: pf(e.Attributes["width"]), Height: pf(e.Attributes["height"])}
	if ferr != nil {
		return rrt.Rect{}, errors.Wrap(ferr, "bad canvas size")
	}
	return b, nil
}

func parseElements(s *Scene, e *svgparser.Element) error {
	for _, c := range e.Children {
		if _, ok := c.Attributes["transform"]; ok {
			return errors.Errorf("%s element %q: transforms are not supported", c.Name, c.Attributes["id"])
		}

		var ferr error
		pf := floatParser(&ferr)

		switch c.Name {
		case "g":
			if err := parseElements(s, c); err != nil {
				return err
			}
		case "rect":
			s.Obstacles = append(s.Obstacles, rrt.Rect{
				X:      pf(c.Attributes["x"]),
				Y:      pf(c.Attributes["y"]),
				Width:  pf(c.Attributes["width"]),
				Height: pf(c.Attributes["height"]),
			})
		case "circle":
			p := rrt.Point{X: pf(c.Attributes["cx"]), Y: pf(c.Attributes["cy"])}
			switch c.Attributes["id"] {
			case RoleStart:
				s.Start = &p
			case RoleGoal:
				s.Goal = &p
			}
		case "title", "desc", "defs", "line", "polyline":
			continue
		default:
			log.Printf("⚠️  Ignoring svg element %q\n", c.Name)
		}

		if ferr != nil {
			return errors.Wrapf(ferr, "%s element", c.Name)
		}
	}
	return nil
}

// floatParser returns a parser that records the first failure in *ferr.
// Missing attributes read as zero; a trailing "px" is ignored.
func floatParser(ferr *error) func(string) float64 {
	return func(v string) float64 {
		if *ferr != nil {
			return 0
		}
		v = strings.TrimSuffix(strings.TrimSpace(v), "px")
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		*ferr = err
		return f
	}
}

var svgh = `<svg height="%g" width="%g" viewBox="%g %g %g %g" version="1.1" xmlns="http://www.w3.org/2000/svg">`

// WriteSVG draws the scene with grey obstacles, the tree in blue and the
// path in red. The output loads back with LoadSVG.
func WriteSVG(w io.Writer, s *Scene, tree *rrt.Tree, path []rrt.Point) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}

	b := s.Bounds
	wr(svgh, b.Height, b.Width, b.X, b.Y, b.Width, b.Height)
	wr("\n")

	wr("<g fill=\"grey\">\n")
	for _, o := range s.Obstacles {
		wr("<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/>\n", o.X, o.Y, o.Width, o.Height)
	}
	wr("</g>\n")

	if tree != nil {
		wr("<g stroke=\"blue\" stroke-width=\"1\">\n")
		for _, e := range tree.Edges() {
			wr("<line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\"/>\n", e[0].X, e[0].Y, e[1].X, e[1].Y)
		}
		wr("</g>\n")
	}

	if len(path) > 0 {
		wr("<polyline fill=\"none\" stroke=\"red\" stroke-width=\"2\" points=\"")
		for i, p := range path {
			if i > 0 {
				wr(" ")
			}
			wr("%g,%g", p.X, p.Y)
		}
		wr("\"/>\n")
	}

	if s.Start != nil {
		wr("<circle id=\"start\" cx=\"%g\" cy=\"%g\" r=\"5\" fill=\"black\"/>\n", s.Start.X, s.Start.Y)
	}
	if s.Goal != nil {
		wr("<circle id=\"goal\" cx=\"%g\" cy=\"%g\" r=\"15\" fill=\"none\" stroke=\"green\"/>\n", s.Goal.X, s.Goal.Y)
	}

	wr("</svg>\n")
	if werr != nil {
		return werr
	}
	return bi.Flush()
}
