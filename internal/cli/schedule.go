package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/libavail/availability"
	"github.com/cyp0633/libavail/builder"
)

// Payload is the free-form value attached to rules in schedule files.
type Payload = map[string]any

// Schedule is the YAML document read by the commands.
type Schedule struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec describes one rule. Without weekdays the rule is absolute.
type RuleSpec struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"`
	Start    string   `yaml:"start"`
	End      string   `yaml:"end"`
	Weekdays []string `yaml:"weekdays"`
	Off      bool     `yaml:"off"`
	Payload  Payload  `yaml:"payload"`
}

func (r RuleSpec) label(i int) string {
	if r.Name != "" {
		return fmt.Sprintf("rule %d (%s)", i+1, r.Name)
	}
	return fmt.Sprintf("rule %d", i+1)
}

// LoadSchedule reads and parses a schedule file, rejecting unknown fields.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var schedule Schedule
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(schedule.Rules) == 0 {
		return nil, errors.New("invalid schedule: no rules")
	}
	return &schedule, nil
}

// Engine builds an engine holding every rule of the schedule.
func (s *Schedule) Engine(logger *slog.Logger) (*availability.Engine[Payload], error) {
	e := availability.New[Payload](
		availability.WithLogger(logger),
		availability.WithPayloadEqual(func(a, b Payload) bool { return reflect.DeepEqual(a, b) }),
	)

	for i, spec := range s.Rules {
		b := builder.New[Payload]().
			StartString(spec.Start).
			EndString(spec.End).
			Off(spec.Off)
		if spec.Weekdays != nil {
			b.Weekdays(spec.Weekdays...)
		}
		if spec.Payload != nil {
			b.Payload(spec.Payload)
		}

		rule, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.label(i), err)
		}
		id, err := e.AddRule(rule, spec.Priority)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.label(i), err)
		}
		logger.Debug("loaded rule", "name", spec.Name, "id", id, "priority", spec.Priority)
	}
	return e, nil
}
