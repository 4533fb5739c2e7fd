package trace

import (
	"fmt"

	"github.com/fogleman/gg"
)

const (
	rowHeight  = 24
	leftMargin = 56
	topMargin  = 16
	plotWidth  = 960
)

// slot colours, cycled when there are more slots than entries
var palette = [][3]float64{
	{0.90, 0.30, 0.24},
	{0.20, 0.60, 0.86},
	{0.18, 0.80, 0.44},
	{0.95, 0.61, 0.07},
	{0.61, 0.35, 0.71},
	{0.10, 0.74, 0.61},
	{0.83, 0.33, 0.00},
	{0.50, 0.55, 0.55},
}

// Render draws a dispatch timeline as a PNG: one row per slot, one bar for
// every slice the slot ran, and a red tick where a task terminated.
func Render(path string, events []Event, slots int, end uint64) error {
	if slots < 1 {
		return fmt.Errorf("trace: render needs at least one slot")
	}
	h := topMargin*2 + slots*rowHeight
	dc := gg.NewContext(leftMargin+plotWidth+16, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	for s := 0; s < slots; s++ {
		y := float64(topMargin + s*rowHeight + rowHeight/2)
		dc.DrawStringAnchored(fmt.Sprintf("task %d", s), 8, y, 0, 0.5)
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawLine(leftMargin, y, leftMargin+plotWidth, y)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
	}

	slices := Slices(events, end)
	if len(slices) == 0 {
		return dc.SavePNG(path)
	}
	first := slices[0].Start
	span := float64(end - first)
	if end <= first {
		span = 1
	}
	x := func(c uint64) float64 {
		return leftMargin + float64(c-first)/span*plotWidth
	}

	for _, sl := range slices {
		if sl.Slot < 0 || sl.Slot >= slots {
			continue
		}
		c := palette[sl.Slot%len(palette)]
		dc.SetRGB(c[0], c[1], c[2])
		w := x(sl.End) - x(sl.Start)
		if w < 1 {
			w = 1
		}
		dc.DrawRectangle(x(sl.Start), float64(topMargin+sl.Slot*rowHeight+4), w, rowHeight-8)
		dc.Fill()
	}

	dc.SetRGB(0.8, 0, 0)
	for _, e := range events {
		if !e.Exit || e.From < 0 || e.From >= slots {
			continue
		}
		y := float64(topMargin + e.From*rowHeight)
		dc.DrawLine(x(e.Cycle), y, x(e.Cycle), y+rowHeight)
		dc.Stroke()
	}
	return dc.SavePNG(path)
}
