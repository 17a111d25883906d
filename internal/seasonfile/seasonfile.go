// Package seasonfile reads the YAML season description used by leaguectl
// and turns it into a week-by-week round robin plan.
package seasonfile

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/league"
	"github.com/riskibarqy/playhub-league/internal/domain/schedule"
)

// Date is a calendar day in the season timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse(time.DateOnly, value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Year, d.Month, d.Day = t.Date()
	return nil
}

func (d Date) IsZero() bool {
	return d.Year == 0
}

// Weekday accepts "wed", "wednesday" or 0..6 with Sunday as 0.
type Weekday time.Weekday

func (w *Weekday) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseWeekday(value.Value)
	if err != nil {
		return err
	}
	*w = Weekday(parsed)
	return nil
}

func ParseWeekday(raw string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("%w: %d", deadline.ErrInvalidWeekday, n)
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || (len(v) >= 3 && strings.HasPrefix(name, v)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", deadline.ErrInvalidWeekday, raw)
}

type DeadlineDays struct {
	Substitution *Weekday `yaml:"substitution"`
	Schedule     *Weekday `yaml:"schedule"`
	Results      *Weekday `yaml:"results"`
}

// File is the on-disk season description.
type File struct {
	Name         string       `yaml:"name"`
	Timezone     string       `yaml:"timezone"`
	StartDate    Date         `yaml:"start_date"`
	RegularWeeks int          `yaml:"regular_weeks"`
	Deadlines    DeadlineDays `yaml:"deadlines"`
	Teams        []string     `yaml:"teams"`
}

// Week is one planned league week.
type Week struct {
	Index     int
	OpensAt   time.Time
	Deadlines deadline.Deadlines
	Pairs     []schedule.Pair
}

// Plan is the full regular season derived from a File.
type Plan struct {
	Name     string
	Timezone string
	Teams    []string
	Weeks    []Week
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading season file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a season file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing season file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if f.RegularWeeks < 0 {
		return fmt.Errorf("regular_weeks must be >= 0")
	}
	if len(f.Teams) < 2 {
		return fmt.Errorf("at least two teams are required")
	}
	seen := make(map[string]struct{}, len(f.Teams))
	for _, name := range f.Teams {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("team names cannot be empty")
		}
		if name == schedule.Bye {
			return fmt.Errorf("team name %q is reserved", name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("team %q is listed twice", name)
		}
		seen[name] = struct{}{}
	}
	if _, err := time.LoadLocation(f.timezone()); err != nil {
		return fmt.Errorf("%w %q: %v", deadline.ErrInvalidTimezone, f.timezone(), err)
	}
	return nil
}

func (f *File) timezone() string {
	if tz := strings.TrimSpace(f.Timezone); tz != "" {
		return tz
	}
	return deadline.DefaultTimezone
}

// Days resolves the configured cutoffs with the league defaults of
// Wednesday, Thursday and Sunday.
func (f *File) Days() deadline.Days {
	days := deadline.Days{
		Substitution: time.Wednesday,
		Schedule:     time.Thursday,
		Results:      time.Sunday,
	}
	if f.Deadlines.Substitution != nil {
		days.Substitution = time.Weekday(*f.Deadlines.Substitution)
	}
	if f.Deadlines.Schedule != nil {
		days.Schedule = time.Weekday(*f.Deadlines.Schedule)
	}
	if f.Deadlines.Results != nil {
		days.Results = time.Weekday(*f.Deadlines.Results)
	}
	return days
}

// Plan sorts teams by name and lays out min(regular weeks, rounds) weeks.
// Week i opens at local midnight of start_date plus 7*(i-1) days.
func (f *File) Plan() (Plan, error) {
	tz := f.timezone()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Plan{}, fmt.Errorf("%w %q: %v", deadline.ErrInvalidTimezone, tz, err)
	}

	teams := make([]string, 0, len(f.Teams))
	for _, name := range f.Teams {
		teams = append(teams, strings.TrimSpace(name))
	}
	slices.Sort(teams)

	rounds := schedule.RoundRobin(teams)
	weeks := f.RegularWeeks
	if weeks == 0 {
		weeks = league.DefaultRegularWeeks
	}
	weeks = min(weeks, len(rounds))

	plan := Plan{Name: f.Name, Timezone: tz, Teams: teams, Weeks: make([]Week, 0, weeks)}
	for i := 0; i < weeks; i++ {
		opensAt := time.Date(f.StartDate.Year, f.StartDate.Month, f.StartDate.Day+7*i, 0, 0, 0, 0, loc)
		d, err := deadline.Compute(opensAt, tz, f.Days())
		if err != nil {
			return Plan{}, err
		}
		plan.Weeks = append(plan.Weeks, Week{
			Index:     i + 1,
			OpensAt:   opensAt,
			Deadlines: d,
			Pairs:     rounds[i],
		})
	}
	return plan, nil
}
