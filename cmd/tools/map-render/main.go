// Command map-render replays a telemetry log through the mapper and renders
// the resulting map (path, scan points, objects, boundary features) to PNG.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cybotics/groundstation/internal/mapper"
)

func main() {
	input := flag.String("i", "fixtures.txt", "telemetry log to replay")
	output := flag.String("o", "map.png", "output PNG path")
	maxRange := flag.Float64("max-range", mapper.DefaultMaxRange, "sensor range gate in cm")
	flag.Parse()

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *input, err)
	}
	defer f.Close()

	opts := mapper.DefaultOptions()
	opts.MaxRange = *maxRange
	mp := mapper.New(opts)

	lineCount := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		mp.HandleLine(scanner.Text())
		lineCount++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	if err := renderMap(mp, *output); err != nil {
		log.Fatalf("failed to render map: %v", err)
	}

	pose := mp.CurrentPose()
	log.Printf("✓ Created: %s (%d lines, final pose %.1f,%.1f @ %.1f°)",
		*output, lineCount, pose.X, pose.Y, pose.Heading)
}

func renderMap(mp *mapper.Mapper, output string) error {
	p := plot.New()
	p.Title.Text = "Robot Map"
	p.X.Label.Text = "X (cm)"
	p.Y.Label.Text = "Y (cm)"

	history := mp.MovementHistory()
	pathPts := make(plotter.XYs, 0, len(history))
	for _, pose := range history {
		pathPts = append(pathPts, plotter.XY{X: pose.X, Y: pose.Y})
	}
	if len(pathPts) > 0 {
		pathLine, err := plotter.NewLine(pathPts)
		if err != nil {
			return err
		}
		pathLine.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		pathLine.Width = vg.Points(1)
		p.Add(pathLine)
		p.Legend.Add("path", pathLine)
	}

	if rec := mp.ActiveOrLastScan(); rec != nil && len(rec.Points) > 0 {
		scanPts := make(plotter.XYs, 0, len(rec.Points))
		for _, pt := range rec.Points {
			scanPts = append(scanPts, plotter.XY{X: pt.WorldX, Y: pt.WorldY})
		}
		scanScatter, err := plotter.NewScatter(scanPts)
		if err != nil {
			return err
		}
		scanScatter.Color = color.RGBA{R: 53, G: 183, B: 121, A: 255}
		scanScatter.Radius = vg.Points(1.5)
		p.Add(scanScatter)
		p.Legend.Add(fmt.Sprintf("%s scan", rec.Kind), scanScatter)
	}

	objects := mp.Objects()
	if len(objects) > 0 {
		objPts := make(plotter.XYs, 0, len(objects))
		for _, obj := range objects {
			objPts = append(objPts, plotter.XY{X: obj.WorldX, Y: obj.WorldY})
		}
		objScatter, err := plotter.NewScatter(objPts)
		if err != nil {
			return err
		}
		objScatter.Color = color.RGBA{R: 255, G: 82, B: 82, A: 255}
		objScatter.Radius = vg.Points(4)
		objScatter.Shape = draw.CircleGlyph{}
		p.Add(objScatter)
		p.Legend.Add("objects", objScatter)
	}

	features := mp.FeatureSamples()
	if len(features) > 0 {
		featPts := make(plotter.XYs, 0, len(features))
		for _, f := range features {
			featPts = append(featPts, plotter.XY{X: f.WorldX, Y: f.WorldY})
		}
		featScatter, err := plotter.NewScatter(featPts)
		if err != nil {
			return err
		}
		featScatter.Color = color.RGBA{R: 253, G: 231, B: 37, A: 255}
		featScatter.Radius = vg.Points(3)
		featScatter.Shape = draw.PyramidGlyph{}
		p.Add(featScatter)
		p.Legend.Add("features", featScatter)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	return p.Save(10*vg.Inch, 10*vg.Inch, output)
}
