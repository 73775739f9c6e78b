// Command gen-botlog generates sample telemetry logs for dev-mode replay.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
)

// wall places a synthetic obstacle in the robot's local frame.
type wall struct {
	angleDeg float64 // center angle of the obstacle
	widthDeg float64
	distance float64 // cm
}

func scanLines(kind string, walls []wall, rng *rand.Rand) []string {
	lines := []string{fmt.Sprintf("Beginning %s environment scan", kind)}
	step := 2
	if kind == "PING" {
		step = 10
	}
	for angle := 0; angle <= 180; angle += step {
		distance := 180.0 + rng.Float64()*40 // open field
		for _, w := range walls {
			if math.Abs(float64(angle)-w.angleDeg) <= w.widthDeg/2 {
				distance = w.distance + rng.Float64()*3
				break
			}
		}
		lines = append(lines, fmt.Sprintf("%d  %.1f", angle, distance))
	}
	lines = append(lines, fmt.Sprintf("%s scan complete", kind))

	lines = append(lines, fmt.Sprintf("%s Object Detection Results", kind))
	for i, w := range walls {
		lines = append(lines, fmt.Sprintf("%d |  %.1f |  %.1f |  %.1f",
			i+1, w.angleDeg, w.distance, w.widthDeg*w.distance*math.Pi/180))
	}
	return lines
}

func moveLines(distanceMM int) []string {
	return []string{
		fmt.Sprintf("Moving forward %d mm", distanceMM),
		"Movement complete",
		">",
	}
}

func turnLines(degrees int, rng *rand.Rand) []string {
	dir := "left"
	if rng.Intn(2) == 0 {
		dir = "right"
	}
	return []string{
		fmt.Sprintf("Quick turn %s %d degrees and movement complete", dir, degrees),
		">",
	}
}

func main() {
	output := flag.String("o", "fixtures.txt", "output path")
	passes := flag.Int("n", 3, "number of move-scan passes")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	var lines []string
	lines = append(lines, "CyBot groundstation link established", ">")

	for pass := 0; pass < *passes; pass++ {
		walls := []wall{
			{angleDeg: 20 + rng.Float64()*40, widthDeg: 8 + rng.Float64()*8, distance: 60 + rng.Float64()*80},
			{angleDeg: 100 + rng.Float64()*60, widthDeg: 6 + rng.Float64()*10, distance: 70 + rng.Float64()*90},
		}

		lines = append(lines, moveLines(100+rng.Intn(300))...)
		lines = append(lines, scanLines("IR", walls, rng)...)
		lines = append(lines, ">")
		lines = append(lines, scanLines("PING", walls, rng)...)
		lines = append(lines, ">")
		if rng.Intn(3) == 0 {
			lines = append(lines, "Boundary marker detected")
		}
		lines = append(lines, turnLines(30+rng.Intn(90), rng)...)
	}

	data := strings.Join(lines, "\r\n") + "\r\n"
	if err := os.WriteFile(*output, []byte(data), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
	log.Printf("✓ Created: %s (%d lines, %d passes)", *output, len(lines), *passes)
}
