// Package chart renders pollutant series as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lox/airwatch/internal/models"
)

const (
	Width  = 800
	Height = 400

	marginLeft   = 50
	marginRight  = 20
	marginTop    = 40
	marginBottom = 40
)

var (
	background = color.RGBA{17, 24, 39, 255}
	gridColor  = color.RGBA{55, 65, 81, 255}
	axisColor  = color.RGBA{156, 163, 175, 255}
	textColor  = color.RGBA{229, 231, 235, 255}
)

// Colors maps pollutants to their series color.
var Colors = map[models.Pollutant]color.RGBA{
	models.PM25: {59, 130, 246, 255},
	models.O3:   {16, 185, 129, 255},
	models.NO2:  {245, 158, 11, 255},
}

type Series struct {
	Name   string
	Values []float64
	Color  color.RGBA
}

var errEmpty = errors.New("no data to chart")

// Bars renders grouped bars, one group per label.
func Bars(title string, labels []string, series []Series) ([]byte, error) {
	img, plot, top, err := frame(title, labels, series)
	if err != nil {
		return nil, err
	}

	groupW := float64(plot.Dx()) / float64(len(labels))
	barW := groupW * 0.8 / float64(len(series))
	for si, s := range series {
		for i, v := range s.Values {
			if i >= len(labels) {
				break
			}
			x0 := plot.Min.X + int(float64(i)*groupW+groupW*0.1+float64(si)*barW)
			x1 := x0 + int(math.Max(1, barW-1))
			y0 := yFor(plot, v, top)
			draw.Draw(img, image.Rect(x0, y0, x1, plot.Max.Y), image.NewUniform(s.Color), image.Point{}, draw.Src)
		}
	}
	return encode(img)
}

// Lines renders one polyline per series over evenly spaced labels.
func Lines(title string, labels []string, series []Series) ([]byte, error) {
	img, plot, top, err := frame(title, labels, series)
	if err != nil {
		return nil, err
	}

	step := float64(plot.Dx())
	if len(labels) > 1 {
		step /= float64(len(labels) - 1)
	}
	for _, s := range series {
		var prev image.Point
		for i, v := range s.Values {
			if i >= len(labels) {
				break
			}
			pt := image.Pt(plot.Min.X+int(float64(i)*step), yFor(plot, v, top))
			if i > 0 {
				drawLine(img, prev, pt, s.Color)
			}
			prev = pt
		}
	}
	return encode(img)
}

// frame draws the background, title, grid, axes and labels, and returns
// the plot area and the value mapped to its top edge.
func frame(title string, labels []string, series []Series) (*image.RGBA, image.Rectangle, float64, error) {
	if len(labels) == 0 || len(series) == 0 {
		return nil, image.Rectangle{}, 0, errEmpty
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	plot := image.Rect(marginLeft, marginTop, Width-marginRight, Height-marginBottom)

	top := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			top = math.Max(top, v)
		}
	}
	step := niceStep(top)
	top = math.Ceil(top/step) * step
	if top == 0 {
		top = step
	}

	for v := 0.0; v <= top+step/2; v += step {
		y := yFor(plot, v, top)
		hline(img, plot.Min.X, plot.Max.X, y, gridColor)
		drawText(img, strconv.FormatFloat(v, 'f', -1, 64), 8, y+4, axisColor)
	}
	vline(img, plot.Min.X, plot.Min.Y, plot.Max.Y, axisColor)
	hline(img, plot.Min.X, plot.Max.X, plot.Max.Y, axisColor)

	every := 1
	if len(labels) > 12 {
		every = int(math.Ceil(float64(len(labels)) / 12))
	}
	groupW := float64(plot.Dx()) / float64(len(labels))
	for i, l := range labels {
		if i%every != 0 {
			continue
		}
		x := plot.Min.X + int(float64(i)*groupW+groupW/2) - textWidth(l)/2
		drawText(img, l, x, plot.Max.Y+18, axisColor)
	}

	drawText(img, title, marginLeft, 24, textColor)
	x := Width - marginRight
	for i := len(series) - 1; i >= 0; i-- {
		x -= textWidth(series[i].Name) + 24
		draw.Draw(img, image.Rect(x, 14, x+10, 24), image.NewUniform(series[i].Color), image.Point{}, draw.Src)
		drawText(img, series[i].Name, x+14, 24, textColor)
	}
	return img, plot, top, nil
}

func yFor(plot image.Rectangle, v, top float64) int {
	if v < 0 {
		v = 0
	}
	return plot.Max.Y - int(v/top*float64(plot.Dy()))
}

// niceStep picks a grid spacing of 1, 2 or 5 times a power of ten.
func niceStep(top float64) float64 {
	if top <= 0 {
		return 10
	}
	raw := top / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	n := max(abs(dx), abs(dy))
	if n == 0 {
		img.SetRGBA(a.X, a.Y, c)
		return
	}
	for i := 0; i <= n; i++ {
		x := a.X + dx*i/n
		y := a.Y + dy*i/n
		img.SetRGBA(x, y, c)
		img.SetRGBA(x, y+1, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
