// Package catalog provides the achievement catalog: the built-in default and YAML overrides.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tedrenliv/habit-tracker/internal/domain/entity"
	"github.com/tedrenliv/habit-tracker/internal/progress"
)

// File is the on-disk catalog format
type File struct {
	Achievements []entity.Achievement `yaml:"achievements"`
}

// Default returns the built-in catalog
func Default() []entity.Achievement {
	return []entity.Achievement{
		{
			ID:          "beginner",
			Name:        "Beginner",
			Emoji:       "🌱",
			Description: "Check in for 7 days",
			Requirement: 7,
			Rule:        entity.RuleCumulativeDays,
		},
		{
			ID:          "persister",
			Name:        "Persister",
			Emoji:       "🔥",
			Description: "Check in for 30 days",
			Requirement: 30,
			Rule:        entity.RuleCumulativeDays,
		},
		{
			ID:          "warrior",
			Name:        "Warrior",
			Emoji:       "⚔️",
			Description: "Check in for 100 days",
			Requirement: 100,
			Rule:        entity.RuleCumulativeDays,
		},
		{
			ID:          "perfect-week",
			Name:        "Perfect Week",
			Emoji:       "✨",
			Description: "Complete all habits for 7 consecutive days",
			Requirement: 7,
			Rule:        entity.RuleConsecutiveDays,
		},
		{
			ID:          "trio-master",
			Name:        "Trio Master",
			Emoji:       "🎯",
			Description: "Maintain 3 habits simultaneously",
			Requirement: 3,
			Rule:        entity.RuleSimultaneousHabits,
		},
		{
			ID:          "thousand-days",
			Name:        "1000 Days Practice",
			Emoji:       "👑",
			Description: "Check in for 1000 days",
			Requirement: 1000,
			Rule:        entity.RuleCumulativeDays,
		},
	}
}

// Parse decodes and validates a catalog document
func Parse(data []byte) ([]entity.Achievement, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if len(f.Achievements) == 0 {
		return nil, fmt.Errorf("catalog has no achievements defined")
	}

	if err := progress.ValidateCatalog(f.Achievements); err != nil {
		return nil, err
	}

	return f.Achievements, nil
}

// Load reads a catalog file. An empty path yields the built-in catalog.
func Load(path string) ([]entity.Achievement, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	return Parse(data)
}
