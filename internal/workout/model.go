package workout

import (
	"strings"
	"time"

	"github.com/cavos-labs/forma-app/internal/upstream"
)

const dateLayout = "2006-01-02"

// Section is one titled part of a workout: a "# " heading followed by text
// blocks separated by blank lines.
type Section struct {
	Title  string   `json:"title"`
	Blocks []string `json:"blocks"`
}

// Parse splits workout text into sections. Lines starting with "# " open a
// new section; blank lines separate blocks inside it. Text before the first
// heading lands in an untitled section.
func Parse(text string) []Section {
	var sections []Section
	var current *Section
	var block []string

	flushBlock := func() {
		if current != nil && len(block) > 0 {
			current.Blocks = append(current.Blocks, strings.Join(block, "\n"))
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "# ") {
			flushBlock()
			sections = append(sections, Section{Title: strings.TrimPrefix(trimmed, "# ")})
			current = &sections[len(sections)-1]
			continue
		}
		if strings.TrimSpace(trimmed) == "" {
			flushBlock()
			continue
		}
		if current == nil {
			sections = append(sections, Section{})
			current = &sections[len(sections)-1]
		}
		block = append(block, trimmed)
	}
	flushBlock()
	return sections
}

// Compose is the inverse of Parse for well-formed sections.
func Compose(sections []Section) string {
	var parts []string
	for _, s := range sections {
		var b strings.Builder
		if s.Title != "" {
			b.WriteString("# " + s.Title)
		}
		for i, blk := range s.Blocks {
			if i == 0 && s.Title != "" {
				b.WriteString("\n")
			} else if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(blk)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// Cell is one day slot in the 6x7 month grid.
type Cell struct {
	Date    string                 `json:"date"`
	Day     int                    `json:"day"`
	InMonth bool                   `json:"in_month"`
	Today   bool                   `json:"today"`
	Workout *upstream.DailyWorkout `json:"workout,omitempty"`
}

// MonthGrid lays a month out as 42 cells, Sunday first, padded with the
// neighboring months' days. Workouts attach to their cell by date.
func MonthGrid(year int, month time.Month, workouts []upstream.DailyWorkout, today time.Time) []Cell {
	byDate := make(map[string]*upstream.DailyWorkout, len(workouts))
	for i := range workouts {
		byDate[workouts[i].WorkoutDate] = &workouts[i]
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	todayStr := today.Format(dateLayout)

	cells := make([]Cell, 42)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		date := d.Format(dateLayout)
		cells[i] = Cell{
			Date:    date,
			Day:     d.Day(),
			InMonth: d.Month() == month,
			Today:   date == todayStr,
			Workout: byDate[date],
		}
	}
	return cells
}

// FindByDate returns the workout scheduled on a YYYY-MM-DD date, if any.
func FindByDate(workouts []upstream.DailyWorkout, date string) (upstream.DailyWorkout, bool) {
	for _, w := range workouts {
		if w.WorkoutDate == date {
			return w, true
		}
	}
	return upstream.DailyWorkout{}, false
}
