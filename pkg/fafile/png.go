// Native PNG rendering for automaton diagrams.

package fafile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width       int
	Height      int
	Padding     int
	StateRadius int
	Title       string
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:       800,
		Height:      600,
		Padding:     50,
		StateRadius: 30,
	}
}

// supersample is the factor the diagram is drawn at before downscaling.
const supersample = 4

var (
	colorWhite    = color.RGBA{255, 255, 255, 255}
	colorBlack    = color.RGBA{51, 51, 51, 255}    // #333
	colorStart    = color.RGBA{232, 245, 233, 255} // #e8f5e9
	colorStartBdr = color.RGBA{46, 125, 50, 255}   // #2e7d32
	colorFinal    = color.RGBA{255, 243, 224, 255} // #fff3e0
	colorFinalBdr = color.RGBA{230, 81, 0, 255}    // #e65100
	colorBoth     = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorBothBdr  = color.RGBA{21, 101, 192, 255}  // #1565c0
)

type renderContext struct {
	img       *image.RGBA
	scale     float64
	lineWidth float64
	face      font.Face
}

func newRenderContext(img *image.RGBA, scale int) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(14 * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return &renderContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: float64(scale) * 2,
		face:      face,
	}, nil
}

// RenderPNG renders a to PNG. States are placed on an ellipse in
// breadth-first order from the start state.
func RenderPNG(a *fa.Automaton, w io.Writer, opts PNGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	large := image.NewRGBA(image.Rect(0, 0, opts.Width*supersample, opts.Height*supersample))
	ctx, err := newRenderContext(large, supersample)
	if err != nil {
		return err
	}
	render(ctx, a, opts)

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, out)
}

func render(ctx *renderContext, a *fa.Automaton, opts PNGOptions) {
	s := ctx.scale
	bounds := ctx.img.Bounds()
	draw.Draw(ctx.img, bounds, image.NewUniform(colorWhite), image.Point{}, draw.Src)

	top := float64(opts.Padding) * s
	if opts.Title != "" {
		drawTextCentered(ctx, bounds.Dx()/2, int(25*s), opts.Title, colorBlack)
		top += 35 * s
	}
	area := layoutArea{
		minX: float64(opts.Padding) * s,
		minY: top,
		maxX: float64(bounds.Dx()) - float64(opts.Padding)*s,
		maxY: float64(bounds.Dy()) - float64(opts.Padding)*s,
	}
	pos := circularLayout(a, area)

	radius := float64(opts.StateRadius) * s
	dims := make(map[string][2]float64, len(pos))
	for name := range pos {
		textWidth := float64(font.MeasureString(ctx.face, name).Ceil())
		dims[name] = [2]float64{math.Max(radius, textWidth/2+14*s), radius * 0.8}
	}

	all := edges(a)
	reverse := make(map[[2]string]bool, len(all))
	for _, e := range all {
		reverse[[2]string{e.from, e.to}] = true
	}
	for _, e := range all {
		label := strings.Join(e.labels, ", ")
		switch {
		case e.from == e.to:
			p, d := pos[e.from], dims[e.from]
			drawSelfLoop(ctx, p[0], p[1], d[0], d[1], label)
		default:
			curved := reverse[[2]string{e.to, e.from}]
			drawTransition(ctx, pos[e.from], pos[e.to], dims[e.from], dims[e.to], label, curved)
		}
	}

	start := a.Start()
	if p, ok := pos[start]; ok {
		rx := dims[start][0]
		drawArrowLine(ctx, p[0]-rx-30*s, p[1], p[0]-rx-2*s, p[1], colorBlack)
	}

	for _, name := range a.States() {
		p, d := pos[name], dims[name]
		fill, border := colorWhite, colorBlack
		isStart, isFinal := name == start, a.IsFinal(name)
		switch {
		case isStart && isFinal:
			fill, border = colorBoth, colorBothBdr
		case isStart:
			fill, border = colorStart, colorStartBdr
		case isFinal:
			fill, border = colorFinal, colorFinalBdr
		}
		drawEllipse(ctx, p[0], p[1], d[0], d[1], fill, border)
		if isFinal {
			drawEllipse(ctx, p[0], p[1], d[0]-4*s, d[1]-4*s, color.Transparent, border)
		}
		drawTextCentered(ctx, int(p[0]), int(p[1]+4*s), name, colorBlack)
	}
}

// drawEllipse draws an ellipse outline over an optional fill.
func drawEllipse(ctx *renderContext, cx, cy, rx, ry float64, fill, stroke color.Color) {
	img := ctx.img
	if fill != color.Transparent {
		for dy := -ry; dy <= ry; dy++ {
			yn := dy / ry
			extent := rx * math.Sqrt(1-yn*yn)
			for dx := -extent; dx <= extent; dx++ {
				img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}
	half := ctx.lineWidth / 2
	for angle := 0.0; angle < 2*math.Pi; angle += 0.005 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		for t := -half; t <= half; t += 0.5 {
			img.Set(int(cx+rx*nx+nx*t), int(cy+ry*ny+ny*t), stroke)
		}
	}
}

// drawLine draws a thick line between two points.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	half := ctx.lineWidth / 2
	if dist < 1 {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				ctx.img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}
	px, py := -dy/dist, dx/dist
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		x, y := x1+dx*t, y1+dy*t
		for off := -half; off <= half; off += 0.5 {
			ctx.img.Set(int(x+px*off), int(y+py*off), c)
		}
	}
}

// drawArrowHead draws a filled arrowhead at (x, y) pointing along (nx, ny).
func drawArrowHead(ctx *renderContext, x, y, nx, ny float64, c color.Color) {
	length, width := 8*ctx.scale, 4*ctx.scale
	ax1, ay1 := x-nx*length+ny*width, y-ny*length-nx*width
	ax2, ay2 := x-nx*length-ny*width, y-ny*length+nx*width
	for t := 0.0; t <= 1.0; t += 0.05 {
		drawLine(ctx, x, y, ax1+(ax2-ax1)*t, ay1+(ay2-ay1)*t, c)
	}
}

// drawArrowLine draws a line with an arrowhead at the end.
func drawArrowLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	drawLine(ctx, x1, y1, x2, y2, c)
	dist := math.Hypot(x2-x1, y2-y1)
	if dist < 1 {
		return
	}
	drawArrowHead(ctx, x2, y2, (x2-x1)/dist, (y2-y1)/dist, c)
}

// drawQuadBezierArrow draws a quadratic Bezier curve ending in an arrowhead.
func drawQuadBezierArrow(ctx *renderContext, x1, y1, cx, cy, x2, y2 float64, c color.Color) {
	const steps = 100.0
	px, py := x1, y1
	for i := 1.0; i <= steps; i++ {
		t := i / steps
		x := (1-t)*(1-t)*x1 + 2*(1-t)*t*cx + t*t*x2
		y := (1-t)*(1-t)*y1 + 2*(1-t)*t*cy + t*t*y2
		drawLine(ctx, px, py, x, y, c)
		px, py = x, y
	}
	dist := math.Hypot(x2-cx, y2-cy)
	if dist < 1 {
		return
	}
	drawArrowHead(ctx, x2, y2, (x2-cx)/dist, (y2-cy)/dist, c)
}

// drawTextCentered draws text horizontally centred on x with its visual
// middle near y.
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	width := font.MeasureString(ctx.face, text).Ceil()
	ascent := ctx.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + int(float64(ascent)*0.15)),
		},
	}
	d.DrawString(text)
}

// ellipseEdgePoint returns the point on an ellipse boundary in direction
// (nx, ny) from its centre.
func ellipseEdgePoint(cx, cy, rx, ry, nx, ny float64) (float64, float64) {
	t := 1.0 / math.Sqrt((nx*nx)/(rx*rx)+(ny*ny)/(ry*ry))
	return cx + nx*t, cy + ny*t
}

// drawTransition draws an edge between two distinct states. Curved edges
// bend to the left of their direction so that a pair of opposite edges do
// not overlap.
func drawTransition(ctx *renderContext, from, to, fromDims, toDims [2]float64, label string, curved bool) {
	dx, dy := to[0]-from[0], to[1]-from[1]
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return
	}
	nx, ny := dx/dist, dy/dist
	gap := 2 * ctx.scale

	if !curved {
		sx, sy := ellipseEdgePoint(from[0], from[1], fromDims[0], fromDims[1], nx, ny)
		ex, ey := ellipseEdgePoint(to[0], to[1], toDims[0]+gap, toDims[1]+gap, -nx, -ny)
		drawArrowLine(ctx, sx, sy, ex, ey, colorBlack)
		mx, my := (sx+ex)/2, (sy+ey)/2
		drawTextCentered(ctx, int(mx-ny*12*ctx.scale), int(my+nx*12*ctx.scale), label, colorBlack)
		return
	}

	bend := dist * 0.2
	cx := (from[0]+to[0])/2 + ny*bend
	cy := (from[1]+to[1])/2 - nx*bend
	sdx, sdy := cx-from[0], cy-from[1]
	sd := math.Hypot(sdx, sdy)
	sx, sy := ellipseEdgePoint(from[0], from[1], fromDims[0], fromDims[1], sdx/sd, sdy/sd)
	edx, edy := cx-to[0], cy-to[1]
	ed := math.Hypot(edx, edy)
	ex, ey := ellipseEdgePoint(to[0], to[1], toDims[0]+gap, toDims[1]+gap, edx/ed, edy/ed)
	drawQuadBezierArrow(ctx, sx, sy, cx, cy, ex, ey, colorBlack)

	lx := 0.25*sx + 0.5*cx + 0.25*ex + ny*10*ctx.scale
	ly := 0.25*sy + 0.5*cy + 0.25*ey - nx*10*ctx.scale
	drawTextCentered(ctx, int(lx), int(ly), label, colorBlack)
}

// drawSelfLoop draws a loop on the right edge of a state.
func drawSelfLoop(ctx *renderContext, x, y, rx, ry float64, label string) {
	arcRx, arcRy := rx*0.48, ry*0.42
	arcCx, arcCy := x+rx+arcRx, y
	start, end := -0.85*math.Pi, 0.85*math.Pi

	const steps = 50
	px, py := arcCx+arcRx*math.Cos(start), arcCy+arcRy*math.Sin(start)
	for i := 1; i <= steps; i++ {
		angle := start + float64(i)/steps*(end-start)
		qx, qy := arcCx+arcRx*math.Cos(angle), arcCy+arcRy*math.Sin(angle)
		drawLine(ctx, px, py, qx, qy, colorBlack)
		px, py = qx, qy
	}

	tx, ty := -arcRx*math.Sin(end), arcRy*math.Cos(end)
	if d := math.Hypot(tx, ty); d > 0 {
		drawArrowHead(ctx, px, py, tx/d, ty/d, colorBlack)
	}

	labelW := float64(font.MeasureString(ctx.face, label).Ceil())
	drawTextCentered(ctx, int(arcCx+arcRx+6*ctx.scale+labelW/2), int(arcCy), label, colorBlack)
}
