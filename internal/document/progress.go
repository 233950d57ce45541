package document

import (
	"math"
	"strconv"

	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

// Progress counts completed tasks.
type Progress struct {
	Done    int
	Total   int
	Percent int
}

func progressOf(done, total int) Progress {
	denom := total
	if denom == 0 {
		denom = 1
	}
	return Progress{
		Done:    done,
		Total:   total,
		Percent: int(math.Round(float64(done) / float64(denom) * 100)),
	}
}

func count(tasks []*roadmap.Task) (done, total int) {
	for _, t := range tasks {
		total++
		if t.Done {
			done++
		}
	}
	return done, total
}

// DayProgress reports progress for a single day.
func (d *Document) DayProgress(day int) (Progress, error) {
	plan, ok := d.Day(day)
	if !ok {
		return Progress{}, notFound("day", strconv.Itoa(day))
	}
	return progressOf(count(plan.Tasks)), nil
}

// Progress reports progress over the whole roadmap.
func (d *Document) Progress() Progress {
	var done, total int
	for _, plan := range d.Roadmap {
		dn, tt := count(plan.Tasks)
		done += dn
		total += tt
	}
	return progressOf(done, total)
}

// PhaseProgress reports progress over the days of one phase.
func (d *Document) PhaseProgress(phase string) Progress {
	var done, total int
	for _, plan := range d.Roadmap {
		if plan.Phase != phase {
			continue
		}
		dn, tt := count(plan.Tasks)
		done += dn
		total += tt
	}
	return progressOf(done, total)
}
