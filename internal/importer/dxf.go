package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// point is a drawing coordinate in drawing units.
type point struct {
	X, Y float64
}

// outline is a closed polygon.
type outline []point

// boundingBox returns the min and max corners of the polygon.
func (o outline) boundingBox() (min, max point) {
	if len(o) == 0 {
		return point{}, point{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// area computes the absolute area using the shoelace formula.
func (o outline) area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var a float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(a) / 2
}

// segment represents a line segment between two points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start point
	end   point
}

// ImportDXF imports items from a DXF file. Each closed shape (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) becomes one item whose width and
// length are its bounding box, rounded up to whole units so the shape always
// fits its rectangle.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []outline
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := lwPolylineToOutline(e)
			if len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: point{X: e.Start[0], Y: e.Start[1]},
				end:   point{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	for _, co := range chainSegments(segments, 0.01) {
		if len(co) >= 3 {
			outlines = append(outlines, co)
		}
	}

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, o := range outlines {
		min, max := o.boundingBox()
		width := max.X - min.X
		length := max.Y - min.Y

		if width < 0.01 || length < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", width, length))
			continue
		}

		result.Items = append(result.Items,
			model.NewItem(fmt.Sprintf("DXF Item %d", i+1), wholeUnits(width), wholeUnits(length)))
	}

	return result
}

// wholeUnits rounds a measured extent up, ignoring float noise just above a
// whole number.
func wholeUnits(v float64) int64 {
	r := math.Round(v)
	if math.Abs(v-r) < 1e-6 {
		return int64(r)
	}
	return int64(math.Ceil(v))
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) outline {
	var o outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := point{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := point{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is appended on its own iteration
			o = append(o, arcPts[:len(arcPts)-1]...)
		} else {
			o = append(o, current)
		}
	}

	return o
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, numSegments int) outline {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(outline, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon. The axis
// points are exact, so the bounding box is the circle's diameter.
func circleToOutline(c *entity.Circle, numSegments int) outline {
	o := make(outline, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		o[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return o
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

func pointsToSegments(pts []point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) []outline {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []outline

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		closed := len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance)
		if closed {
			chain = chain[:len(chain)-1]
			outlines = append(outlines, outline(chain))
		}
	}

	// Largest first for a stable item order
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].area() > outlines[j].area()
	})

	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}
