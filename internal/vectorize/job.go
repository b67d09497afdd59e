// Package vectorize turns a dot set into an SVG document in which every
// group of overlapping dots becomes one filled path.
package vectorize

import (
	"errors"
	"image/color"
	"log/slog"
	"time"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/frog-london/Tara-Voice/internal/logging"
)

var errEmptyUnion = errors.New("vectorize: union produced no geometry")

// Phase is the stage a Job is in.
type Phase int

const (
	PhaseScan Phase = iota
	PhaseUnion
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseUnion:
		return "union"
	default:
		return "done"
	}
}

// Progress is reported after every scanned circle, every union operation and
// every finished group.
type Progress struct {
	Phase Phase
	Done  int
	Total int
	// Groups finished so far, out of Groups total once known.
	GroupsDone, Groups int
	// Skipped counts circles whose union failed.
	Skipped int
	// Fallback is set when nothing could be unioned and the result is one
	// path per circle.
	Fallback bool
}

// Options describe the document around the paths.
type Options struct {
	Width, Height float64
	Background    color.RGBA
	Transparent   bool
	Fill          color.RGBA

	Progress func(Progress)
	Log      *slog.Logger
}

// Job is an incremental optimiser. Each Step does one small unit of work so
// the caller can spread the export across frames.
type Job struct {
	circles []Circle
	opts    Options
	log     *slog.Logger

	phase Phase
	uf    *unionFind
	scan  int

	groups  [][]int
	group   int
	member  int
	acc     polyclip.Polygon
	merged  int
	ops     int
	opTotal int

	paths   []string
	skipped int
	failed  int
	result  string
	started time.Time
}

// NewJob prepares an optimiser over circles.
func NewJob(circles []Circle, opts Options) *Job {
	j := &Job{
		circles: circles,
		opts:    opts,
		log:     logging.OrNop(opts.Log),
		uf:      newUnionFind(len(circles)),
		started: time.Now(),
	}
	if len(circles) == 0 {
		j.finish()
	}
	return j
}

// Done reports whether Result is ready.
func (j *Job) Done() bool { return j.phase == PhaseDone }

// Result is the finished SVG document, empty until Done.
func (j *Job) Result() string { return j.result }

// Step performs one unit of work and reports whether more remain.
func (j *Job) Step() bool {
	switch j.phase {
	case PhaseScan:
		j.stepScan()
	case PhaseUnion:
		j.stepUnion()
	}
	return j.phase != PhaseDone
}

// StepFor runs steps until d has elapsed or the job finishes.
func (j *Job) StepFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for j.Step() {
		if !time.Now().Before(deadline) {
			return true
		}
	}
	return false
}

// stepScan compares one circle with every later circle.
func (j *Job) stepScan() {
	i := j.scan
	ci := j.circles[i]
	for k := i + 1; k < len(j.circles); k++ {
		if ci.overlaps(j.circles[k]) {
			j.uf.union(i, k)
		}
	}
	j.scan++
	j.report(PhaseScan, j.scan, len(j.circles))
	if j.scan < len(j.circles) {
		return
	}

	j.groups = j.uf.groups()
	for _, g := range j.groups {
		if len(g) > 1 {
			j.opTotal += len(g)
		}
	}
	j.phase = PhaseUnion
	j.log.Debug("overlap scan finished", "circles", len(j.circles), "groups", len(j.groups))
}

// stepUnion emits a singleton group or merges one member of a larger group.
func (j *Job) stepUnion() {
	g := j.groups[j.group]
	if len(g) == 1 {
		j.paths = append(j.paths, arcPath(j.circles[g[0]]))
		j.nextGroup()
		return
	}

	c := j.circles[g[j.member]]
	if j.acc == nil {
		j.acc = polygon(c)
		j.merged = 1
	} else if out, err := union(j.acc, polygon(c)); err != nil {
		j.skipped++
		j.log.Debug("union failed, circle skipped", "x", c.X, "y", c.Y, "err", err)
	} else {
		j.acc = out
		j.merged++
	}
	j.member++
	j.ops++
	j.report(PhaseUnion, j.ops, j.opTotal)
	if j.member < len(g) {
		return
	}

	rings := outerRings(j.acc)
	if j.merged < 2 || len(rings) == 0 {
		// nothing merged: keep the dots as they are
		j.failed++
		for _, i := range g {
			j.paths = append(j.paths, arcPath(j.circles[i]))
		}
	} else {
		j.paths = append(j.paths, ringsPath(rings))
	}
	j.nextGroup()
}

func (j *Job) nextGroup() {
	j.group++
	j.member = 0
	j.acc = nil
	j.report(PhaseUnion, j.ops, j.opTotal)
	if j.group == len(j.groups) {
		j.finish()
	}
}

func (j *Job) finish() {
	fallback := false
	multi := 0
	for _, g := range j.groups {
		if len(g) > 1 {
			multi++
		}
	}
	if multi > 0 && j.failed == multi {
		fallback = true
		j.result = NaiveSVG(j.circles, j.opts)
	} else {
		j.result = document(j.paths, j.opts)
	}
	j.phase = PhaseDone
	j.log.Info("svg export finished",
		"circles", len(j.circles), "paths", len(j.paths),
		"skipped", j.skipped, "fallback", fallback,
		"elapsed", time.Since(j.started))
	if j.opts.Progress != nil {
		j.opts.Progress(Progress{
			Phase: PhaseDone, Done: j.ops, Total: j.opTotal,
			GroupsDone: len(j.groups), Groups: len(j.groups),
			Skipped: j.skipped, Fallback: fallback,
		})
	}
}

func (j *Job) report(phase Phase, done, total int) {
	if j.opts.Progress == nil {
		return
	}
	j.opts.Progress(Progress{
		Phase: phase, Done: done, Total: total,
		GroupsDone: j.group, Groups: len(j.groups),
		Skipped: j.skipped,
	})
}

// Optimize runs a job to completion.
func Optimize(circles []Circle, opts Options) string {
	j := NewJob(circles, opts)
	for j.Step() {
	}
	return j.Result()
}
