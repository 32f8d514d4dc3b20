package report

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/bcdannyboy/qfin/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MaxPlotSteps bounds the lattices that are drawn node by node.
const MaxPlotSteps = 60

var ErrTooManySteps = errors.New("lattice too large to draw")

type NodeClass string

const (
	Root     NodeClass = "root"
	UpMost   NodeClass = "up-most"
	DownMost NodeClass = "down-most"
	Terminal NodeClass = "terminal"
	Interior NodeClass = "interior"
)

// Classify places node (i, j) of an n-step lattice. Terminal wins over the edge classes.
func Classify(i, j, n int) NodeClass {
	switch {
	case i == 0:
		return Root
	case i == n:
		return Terminal
	case j == 0:
		return UpMost
	case j == i:
		return DownMost
	}
	return Interior
}

// Node is one lattice node in flat form.
type Node struct {
	Step     int       `json:"step"`
	Index    int       `json:"index"`
	Price    float64   `json:"price"`
	Value    float64   `json:"value"`
	Exercise bool      `json:"exercise"`
	Class    NodeClass `json:"class"`
}

func Nodes(r *models.LatticeResult) []Node {
	n := r.Steps()
	out := make([]Node, 0, (n+1)*(n+2)/2)
	for i := range r.Prices {
		for j := range r.Prices[i] {
			out = append(out, Node{
				Step:     i,
				Index:    j,
				Price:    r.Prices[i][j],
				Value:    r.Values[i][j],
				Exercise: r.Exercise[i][j],
				Class:    Classify(i, j, n),
			})
		}
	}
	return out
}

var classColors = map[NodeClass]color.Color{
	Root:     color.RGBA{A: 255},
	UpMost:   color.RGBA{G: 160, A: 255},
	DownMost: color.RGBA{R: 200, A: 255},
	Terminal: color.RGBA{B: 220, A: 255},
	Interior: color.RGBA{R: 128, G: 128, B: 128, A: 255},
}

// TreePlot draws nodes at (step, underlying price) with edges to their two successors.
// Early-exercise nodes get an orange ring.
func TreePlot(r *models.LatticeResult, title string) (*plot.Plot, error) {
	n := r.Steps()
	if n > MaxPlotSteps {
		return nil, fmt.Errorf("%w: %d steps, limit %d", ErrTooManySteps, n, MaxPlotSteps)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Underlying price"
	p.Add(plotter.NewGrid())

	edgeColor := color.RGBA{R: 190, G: 190, B: 190, A: 255}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			for _, next := range []int{j, j + 1} {
				edge, err := plotter.NewLine(plotter.XYs{
					{X: float64(i), Y: r.Prices[i][j]},
					{X: float64(i + 1), Y: r.Prices[i+1][next]},
				})
				if err != nil {
					return nil, err
				}
				edge.Color = edgeColor
				edge.Width = vg.Points(0.5)
				p.Add(edge)
			}
		}
	}

	byClass := make(map[NodeClass]plotter.XYs)
	var exercised plotter.XYs
	for _, node := range Nodes(r) {
		pt := plotter.XY{X: float64(node.Step), Y: node.Price}
		byClass[node.Class] = append(byClass[node.Class], pt)
		if node.Exercise {
			exercised = append(exercised, pt)
		}
	}

	for _, class := range []NodeClass{Interior, UpMost, DownMost, Terminal, Root} {
		pts := byClass[class]
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = classColors[class]
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(string(class), sc)
	}

	if len(exercised) > 0 {
		ring, err := plotter.NewScatter(exercised)
		if err != nil {
			return nil, err
		}
		ring.GlyphStyle.Color = color.RGBA{R: 255, G: 140, A: 255}
		ring.GlyphStyle.Shape = draw.RingGlyph{}
		ring.GlyphStyle.Radius = vg.Points(5)
		p.Add(ring)
		p.Legend.Add("early exercise", ring)
	}
	p.Legend.Top = true

	return p, nil
}

// SaveTree writes the tree diagram to path; the extension picks the image format.
func SaveTree(r *models.LatticeResult, title, path string) error {
	p, err := TreePlot(r, title)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
