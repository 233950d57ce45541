// Package roadmap generates the fixed 60-day project schedule.
//
// The schedule is driven by a static table of phases. Each phase owns a contiguous
// range of days and a short list of task templates. Day d receives 4 + d%3 tasks,
// and task i of that day uses template (d+i) % len(templates), so templates rotate
// predictably through a phase. Only task identifiers vary between runs.
package roadmap
