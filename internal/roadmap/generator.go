package roadmap

import (
	"fmt"

	"git.home.luguber.info/inful/kaizen/internal/ids"
)

// TasksForDay is the number of tasks scheduled on day d: 4, 5 or 6.
func TasksForDay(d int) int {
	return 4 + d%3
}

// Generate builds the full schedule, one DayPlan per day in ascending order.
// The id source only affects task identifiers.
func Generate(src ids.Source) ([]DayPlan, error) {
	return generate(phases, src)
}

// Default generates a schedule with random task identifiers.
func Default() ([]DayPlan, error) {
	return Generate(ids.Random{})
}

func generate(table []Phase, src ids.Source) ([]DayPlan, error) {
	if src == nil {
		src = ids.Random{}
	}
	plans := make([]DayPlan, 0, Days)
	for d := 1; d <= Days; d++ {
		phase, err := phaseIn(table, d)
		if err != nil {
			return nil, err
		}
		n := TasksForDay(d)
		tasks := make([]*Task, 0, n)
		for i := 0; i < n; i++ {
			tpl := phase.Templates[(d+i)%len(phase.Templates)]
			tasks = append(tasks, &Task{
				ID:               fmt.Sprintf("d%dt%d-%s", d, i, src.Suffix(4)),
				Title:            tpl.Title,
				Description:      tpl.Description,
				EstimatedMinutes: tpl.Minutes,
			})
		}
		plans = append(plans, DayPlan{Day: d, Phase: phase.Name, Tasks: tasks})
	}
	return plans, nil
}
