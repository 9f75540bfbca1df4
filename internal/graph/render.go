package graph

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth  = 720
	canvasHeight = 420
	nodeRadius   = 34
	edgeWidth    = 3.0
	arrowLength  = 16.0
	arrowWidth   = 8.0
	maxLabelLen  = 18
)

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorNode       = color.RGBA{0xbb, 0xde, 0xfb, 0xff}
	colorNodeBorder = color.RGBA{0x19, 0x76, 0xd2, 0xff}
	colorText       = color.RGBA{0x21, 0x21, 0x21, 0xff}
	colorPositive   = color.RGBA{0x2e, 0x7d, 0x32, 0xff}
	colorNegative   = color.RGBA{0xc6, 0x28, 0x28, 0xff}
	colorNeutral    = color.RGBA{0x75, 0x75, 0x75, 0xff}
)

type point struct{ x, y float64 }

// layout places sources in a column on the left and targets in a column on
// the right, evenly spaced. Unlike a force-directed layout it is stable
// across runs.
func layout(g *Graph) []point {
	var sources, targets []int
	for i := range g.Nodes {
		if g.OutDegree(i) > 0 {
			sources = append(sources, i)
		} else {
			targets = append(targets, i)
		}
	}
	pos := make([]point, len(g.Nodes))
	column := func(ids []int, x float64) {
		step := float64(canvasHeight) / float64(len(ids)+1)
		for k, id := range ids {
			pos[id] = point{x, step * float64(k+1)}
		}
	}
	column(sources, 170)
	column(targets, 550)
	return pos
}

// RenderPNG draws g and writes it as PNG.
func RenderPNG(g *Graph, w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorBackground}, image.Point{}, draw.Src)

	pos := layout(g)

	for _, e := range g.Edges {
		drawEdge(img, pos[e.From], pos[e.To], e.Weight)
	}
	for i, name := range g.Nodes {
		fillCircle(img, pos[i], nodeRadius+2, colorNodeBorder)
		fillCircle(img, pos[i], nodeRadius, colorNode)
		drawLabel(img, truncate(name), pos[i].x, pos[i].y+4)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DataURI renders g as a base64 PNG data URI for inline display.
func DataURI(g *Graph) (string, error) {
	var buf bytes.Buffer
	if err := RenderPNG(g, &buf); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func edgeColor(weight int) color.RGBA {
	switch {
	case weight > 0:
		return colorPositive
	case weight < 0:
		return colorNegative
	default:
		return colorNeutral
	}
}

func drawEdge(img *image.RGBA, from, to point, weight int) {
	dx, dy := to.x-from.x, to.y-from.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	start := point{from.x + ux*nodeRadius, from.y + uy*nodeRadius}
	tip := point{to.x - ux*(nodeRadius+2), to.y - uy*(nodeRadius+2)}
	base := point{tip.x - ux*arrowLength, tip.y - uy*arrowLength}

	c := edgeColor(weight)
	drawLine(img, start, base, edgeWidth, c)

	// perpendicular
	px, py := -uy, ux
	fillTriangle(img,
		tip,
		point{base.x + px*arrowWidth, base.y + py*arrowWidth},
		point{base.x - px*arrowWidth, base.y - py*arrowWidth},
		c)

	mid := point{(start.x + base.x) / 2, (start.y + base.y) / 2}
	label := fmt.Sprintf("%+d %%", weight)
	drawLabel(img, label, mid.x+px*12, mid.y+py*12)
}

func drawLine(img *image.RGBA, a, b point, width float64, c color.RGBA) {
	length := math.Hypot(b.x-a.x, b.y-a.y)
	steps := int(length*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fillCircle(img, point{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t}, width/2, c)
	}
}

func fillCircle(img *image.RGBA, center point, r float64, c color.RGBA) {
	minX, maxX := int(math.Floor(center.x-r)), int(math.Ceil(center.x+r))
	minY, maxY := int(math.Floor(center.y-r)), int(math.Ceil(center.y+r))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fx, fy := float64(x)+0.5-center.x, float64(y)+0.5-center.y
			if fx*fx+fy*fy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func fillTriangle(img *image.RGBA, a, b, p point, c color.RGBA) {
	minX := int(math.Floor(math.Min(a.x, math.Min(b.x, p.x))))
	maxX := int(math.Ceil(math.Max(a.x, math.Max(b.x, p.x))))
	minY := int(math.Floor(math.Min(a.y, math.Min(b.y, p.y))))
	maxY := int(math.Ceil(math.Max(a.y, math.Max(b.y, p.y))))
	edge := func(p0, p1 point, x, y float64) float64 {
		return (p1.x-p0.x)*(y-p0.y) - (p1.y-p0.y)*(x-p0.x)
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			w0 := edge(b, p, fx, fy)
			w1 := edge(p, a, fx, fy)
			w2 := edge(a, b, fx, fy)
			if (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawLabel draws s horizontally centred on x with its baseline at y.
func drawLabel(img *image.RGBA, s string, x, y float64) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Round()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorText),
		Face: face,
		Dot:  fixed.P(int(x)-width/2, int(y)),
	}
	d.DrawString(s)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelLen {
		return s
	}
	return string(r[:maxLabelLen-2]) + ".."
}
