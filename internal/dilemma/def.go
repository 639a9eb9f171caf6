package dilemma

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/sim"
)

// minCountdownSeconds is the floor applied to degenerate stage countdowns
// so no downstream division ever sees zero.
const minCountdownSeconds = 0.1

// defaultStageSpeed is the train speed used when a stage omits one.
const defaultStageSpeed = 70.0

// RandomizableCount accepts a plain integer, a numeric string, or
// "uniform(min,max)". Randomized forms are resolved once at load time.
type RandomizableCount struct {
	Fixed   int
	Uniform bool
	Min     int
	Max     int
}

func (r *RandomizableCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		r.Fixed = n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be an integer or string, got %s", data)
	}
	if v, err := strconv.Atoi(s); err == nil {
		r.Fixed = v
		return nil
	}

	inner, found := strings.CutPrefix(s, "uniform(")
	inner, closed := strings.CutSuffix(inner, ")")
	if found && closed {
		parts := strings.Split(inner, ",")
		if len(parts) == 2 {
			min, errMin := strconv.Atoi(strings.TrimSpace(parts[0]))
			max, errMax := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errMin == nil && errMax == nil {
				r.Uniform = true
				r.Min = min
				r.Max = max
				return nil
			}
		}
	}
	return fmt.Errorf("invalid count format %q", s)
}

// Resolve draws the concrete value for a randomized count.
func (r RandomizableCount) Resolve(rng *sim.RNG) int {
	if !r.Uniform {
		return r.Fixed
	}
	return rng.IntBetween(r.Min, r.Max)
}

type optionLoader struct {
	Index       int                `json:"index"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	NumHumans   *RandomizableCount `json:"num_humans"`
}

type stageLoader struct {
	Repeat           int                `json:"repeat"`
	CountdownSeconds float64            `json:"countdown_duration_seconds"`
	Options          []optionLoader     `json:"options"`
	OptionCount      *RandomizableCount `json:"option_count"`
	DefaultOption    *int               `json:"default_option"`
	Speed            float64            `json:"speed"`
}

type defLoader struct {
	Index         string                `json:"index"`
	Name          string                `json:"name"`
	NarrationPath string                `json:"narration_path"`
	MusicPath     string                `json:"music_path"`
	Description   string                `json:"description"`
	VisualProfile scene.VisualSelection `json:"visual_profile"`
	Stages        []stageLoader         `json:"stages"`
}

// Option is one branch of a stage's junction. TotalFatalities is its sole
// behavioral consequence.
type Option struct {
	Index           int
	Name            string
	Description     string
	TotalFatalities int
}

// Stage is one junction encounter: a countdown, two or more options, and
// an optional preset lever side.
type Stage struct {
	CountdownSeconds float64
	Options          []Option
	DefaultOption    *int
	Speed            float64
}

// Definition is the static form of a dilemma, fully resolved: repeats
// expanded, randomized counts drawn, descriptions substituted.
type Definition struct {
	ID            scene.ID
	Index         string
	Name          string
	NarrationPath string
	MusicPath     string
	Description   string
	VisualProfile scene.VisualSelection
	Stages        []Stage
}

// Load parses and resolves a dilemma from the content catalog. Randomized
// counts are drawn once per authored stage and reused across its repeats,
// so a repeated stage presents a consistent scenario.
func Load(id scene.ID, rng *sim.RNG) (*Definition, error) {
	data, err := scene.Resolve(id)
	if err != nil {
		return nil, err
	}

	var loader defLoader
	if err := json.Unmarshal(data, &loader); err != nil {
		return nil, fmt.Errorf("dilemma %s: %w", id, err)
	}
	if len(loader.Stages) == 0 {
		return nil, fmt.Errorf("dilemma %s has no stages", id)
	}

	def := &Definition{
		ID:            id,
		Index:         loader.Index,
		Name:          loader.Name,
		NarrationPath: loader.NarrationPath,
		MusicPath:     loader.MusicPath,
		Description:   loader.Description,
		VisualProfile: loader.VisualProfile,
	}
	if def.VisualProfile.Profile == "" {
		def.VisualProfile.Profile = scene.DefaultVisualProfile
	}

	for si, sl := range loader.Stages {
		stage, err := resolveStage(&sl, rng)
		if err != nil {
			return nil, fmt.Errorf("dilemma %s stage %d: %w", id, si, err)
		}

		repeat := sl.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			def.Stages = append(def.Stages, stage)
		}
	}
	return def, nil
}

func resolveStage(sl *stageLoader, rng *sim.RNG) (Stage, error) {
	if len(sl.Options) == 0 {
		return Stage{}, fmt.Errorf("stage has no options")
	}

	optionCount := len(sl.Options)
	if sl.OptionCount != nil {
		optionCount = sl.OptionCount.Resolve(rng)
		if optionCount < 1 {
			optionCount = 1
		}
		if optionCount > len(sl.Options) {
			optionCount = len(sl.Options)
		}
	}

	stage := Stage{
		CountdownSeconds: sl.CountdownSeconds,
		Speed:            sl.Speed,
	}
	if stage.CountdownSeconds < minCountdownSeconds {
		stage.CountdownSeconds = minCountdownSeconds
	}
	if stage.Speed <= 0 {
		stage.Speed = defaultStageSpeed
	}

	for _, ol := range sl.Options[:optionCount] {
		numHumans := 0
		if ol.NumHumans != nil {
			numHumans = ol.NumHumans.Resolve(rng)
		}
		if numHumans < 0 {
			numHumans = 0
		}
		stage.Options = append(stage.Options, Option{
			Index:           ol.Index,
			Name:            ol.Name,
			Description:     strings.ReplaceAll(ol.Description, "{num_humans}", strconv.Itoa(numHumans)),
			TotalFatalities: numHumans,
		})
	}

	// Out-of-range default options degrade to "no default" so the lever
	// starts in Random rather than pointing at a missing branch.
	if sl.DefaultOption != nil {
		idx := *sl.DefaultOption
		if idx >= 0 && idx < len(stage.Options) {
			stage.DefaultOption = &idx
		}
	}
	return stage, nil
}

// OptionFatalities returns the fatality count of the given option slot,
// clamped into range.
func (s *Stage) OptionFatalities(index int) int {
	if len(s.Options) == 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.Options) {
		index = len(s.Options) - 1
	}
	return s.Options[index].TotalFatalities
}
