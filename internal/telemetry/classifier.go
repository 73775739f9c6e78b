package telemetry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cybotics/groundstation/internal/units"
)

// featureMarker is the exact phrase the robot prints when its cliff
// sensors cross the field boundary tape.
const featureMarker = "Boundary marker detected"

// rowMode tracks which tabular block the stream is currently inside, so a
// bare numeric row can be typed by the begin/header marker that framed it.
type rowMode int

const (
	modeNone rowMode = iota
	modeScan
	modeDetection
)

// movementTemplate binds a confirmation pattern to the movement it
// confirms. marker is the completion phrase that must appear in the same
// buffered block before the movement is trusted; magnitude conversion maps
// the wire unit to centimeters or degrees.
type movementTemplate struct {
	re      *regexp.Regexp
	kind    MovementKind
	marker  string
	convert func(float64) float64
}

func identity(v float64) float64 { return v }

// Long-form confirmations come from the parameterised move command and
// report translation in millimeters; quick-form confirmations come from
// the single-key commands and report centimeters directly.
var movementTemplates = []movementTemplate{
	{regexp.MustCompile(`Moving forward (\d+) mm`), MoveForward, "Movement complete", units.MillimetersToCentimeters},
	{regexp.MustCompile(`Moving backward (\d+) mm`), MoveBackward, "Movement complete", units.MillimetersToCentimeters},
	{regexp.MustCompile(`Turning right (\d+) degrees`), TurnRight, "Movement complete", identity},
	{regexp.MustCompile(`Turning left (\d+) degrees`), TurnLeft, "Movement complete", identity},
	{regexp.MustCompile(`Quick move forward (\d+)\s*cm`), MoveForward, "complete", identity},
	{regexp.MustCompile(`Quick move backward (\d+)\s*cm`), MoveBackward, "complete", identity},
	{regexp.MustCompile(`Quick turn right (\d+) degrees`), TurnRight, "complete", identity},
	{regexp.MustCompile(`Quick turn left (\d+) degrees`), TurnLeft, "complete", identity},
}

var (
	scanBeginPattern       = regexp.MustCompile(`(?i)beginning (IR|PING) environment scan`)
	scanCompletePattern    = regexp.MustCompile(`(IR|PING) scan complete`)
	detectionHeaderPattern = regexp.MustCompile(`(IR|PING) Object Detection Results`)
	numberPattern          = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Classifier turns framed telemetry lines into typed events. It is
// stateful in two narrow ways that mirror the wire protocol: movement
// confirmations are gated on a completion marker arriving in the same
// buffered block (the robot prints the confirmation and the marker as
// separate lines, reset by its `>` prompt), and tabular rows are typed by
// the scan-begin or detection-header line that framed them.
//
// Classify never returns an error: a line that matches nothing, or a row
// that fails both strict and fallback parsing, yields nil. Telemetry noise
// is expected, not exceptional.
type Classifier struct {
	block      strings.Builder
	pending    *Movement
	marker     string
	mode       rowMode
	activeScan ScanKind
	detectKind ScanKind
}

// NewClassifier returns a Classifier with no buffered state.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ActiveScanKind reports the kind of the scan currently being collected,
// if any.
func (c *Classifier) ActiveScanKind() (ScanKind, bool) {
	if c.mode == modeScan {
		return c.activeScan, true
	}
	return "", false
}

// Classify matches line against the template vocabulary in priority order
// and returns the resulting event, or nil if the line is noise. A line can
// match at most one template.
func (c *Classifier) Classify(line string) Event {
	// The robot's input prompt terminates a response block. Anything
	// still pending (an unconfirmed movement, an open detection table)
	// is discarded with it.
	if strings.Contains(line, ">") {
		c.resetBlock()
		if c.mode == modeDetection {
			c.mode = modeNone
		}
		return nil
	}

	c.block.WriteString(line)
	c.block.WriteByte('\n')

	if ev := c.classifyMovement(line); ev != nil {
		return ev
	}

	if m := scanBeginPattern.FindStringSubmatch(line); m != nil {
		kind := ScanKind(strings.ToUpper(m[1]))
		c.mode = modeScan
		c.activeScan = kind
		return ScanBegin{Kind: kind}
	}

	if m := scanCompletePattern.FindStringSubmatch(line); m != nil {
		kind := ScanKind(m[1])
		// A completion for a different kind does not end the current
		// block; the session layer treats it as a no-op too.
		if c.mode == modeScan && kind == c.activeScan {
			c.mode = modeNone
		}
		return ScanComplete{Kind: kind}
	}

	if m := detectionHeaderPattern.FindStringSubmatch(line); m != nil {
		kind := ScanKind(m[1])
		c.mode = modeDetection
		c.detectKind = kind
		return DetectionHeader{Kind: kind}
	}

	if strings.Contains(line, featureMarker) {
		return FeatureMark{}
	}

	var ev Event
	switch c.mode {
	case modeScan:
		ev = c.classifyScanRow(line)
	case modeDetection:
		ev = c.classifyDetectionRow(line)
	}
	if ev != nil {
		return ev
	}

	// A pending movement's completion marker arrives on a line of its
	// own. Checked only after every template has failed, so a marker
	// substring inside a recognized line ("IR scan complete" while a
	// quick-form movement holds the marker "complete") cannot shadow
	// that line's own classification.
	if c.pending != nil && strings.Contains(line, c.marker) {
		move := *c.pending
		c.resetBlock()
		return move
	}
	return nil
}

// classifyMovement handles the confirmation templates and their completion
// gating. Two shapes occur on the wire: confirmation and marker on one
// line, or confirmation first and the marker later in the block (resolved
// by the marker fallback at the end of Classify).
func (c *Classifier) classifyMovement(line string) Event {
	for _, tmpl := range movementTemplates {
		m := tmpl.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		move := Movement{Kind: tmpl.kind, Magnitude: tmpl.convert(value)}
		if strings.Contains(c.block.String(), tmpl.marker) {
			c.resetBlock()
			return move
		}
		// confirmation seen, marker not yet: hold until it arrives
		c.pending = &move
		c.marker = tmpl.marker
		return nil
	}
	return nil
}

// classifyScanRow parses an angle/distance sample. Strict parsing takes
// the first two whitespace-separated tokens; on failure, all numeric
// substrings are extracted positionally. Rows that still lack two fields,
// or whose angle falls outside the sensor's 0–180 degree sweep, are
// dropped without mutating state.
func (c *Classifier) classifyScanRow(line string) Event {
	var angle, distance float64
	fields := strings.Fields(line)
	if len(fields) >= 2 {
		a, errA := strconv.ParseFloat(fields[0], 64)
		d, errD := strconv.ParseFloat(fields[1], 64)
		if errA == nil && errD == nil {
			angle, distance = a, d
			return validateScanRow(angle, distance)
		}
	}
	nums := extractNumbers(line)
	if len(nums) < 2 {
		return nil
	}
	return validateScanRow(nums[0], nums[1])
}

func validateScanRow(angle, distance float64) Event {
	if angle < 0 || angle > 180 {
		return nil
	}
	return ScanRow{LocalAngle: angle, Distance: distance}
}

// classifyDetectionRow parses an object record: id, center angle,
// distance, width. The wire format is pipe-delimited but whitespace-only
// variants occur; the same positional numeric fallback applies.
func (c *Classifier) classifyDetectionRow(line string) Event {
	var tokens []string
	if strings.Contains(line, "|") {
		for _, tok := range strings.Split(line, "|") {
			tokens = append(tokens, strings.TrimSpace(tok))
		}
	} else {
		tokens = strings.Fields(line)
	}

	if len(tokens) >= 4 {
		vals := make([]float64, 0, 4)
		ok := true
		for _, tok := range tokens[:4] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if ok {
			return c.validateDetectionRow(vals)
		}
	}

	nums := extractNumbers(line)
	if len(nums) < 4 {
		return nil
	}
	return c.validateDetectionRow(nums[:4])
}

func (c *Classifier) validateDetectionRow(vals []float64) Event {
	if vals[1] < 0 || vals[1] > 180 {
		return nil
	}
	return DetectionRow{
		ID:         int(vals[0]),
		LocalAngle: vals[1],
		Distance:   vals[2],
		Width:      vals[3],
		SourceKind: c.detectKind,
	}
}

func (c *Classifier) resetBlock() {
	c.block.Reset()
	c.pending = nil
	c.marker = ""
}

// extractNumbers returns every numeric substring of line as a float, in
// order of appearance.
func extractNumbers(line string) []float64 {
	matches := numberPattern.FindAllString(line, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}
