package scene

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
)

// DefaultVisualProfile is the fallback used for unknown profile names.
const DefaultVisualProfile = "desert_default"

//go:embed content/visual_profiles.json
var visualProfilesJSON []byte

// VisualSelection is a dilemma's profile choice: a named profile plus an
// intensity step from 0 (calm) to 4 (carnage).
type VisualSelection struct {
	Profile   string `json:"profile"`
	Intensity int    `json:"intensity"`
}

type VisualCatalog struct {
	Version  int             `json:"version"`
	Profiles []VisualProfile `json:"profiles"`
}

type VisualProfile struct {
	ID               string            `json:"id"`
	BackgroundLayers []BackgroundLayer `json:"background_layers"`
	AmbientSmoke     SmokeProfile      `json:"ambient_smoke"`
	AmbientViscera   VisceraProfile    `json:"ambient_viscera"`
}

// BackgroundLayer densities scale linearly with intensity; speeds scale
// with the stage's train speed.
type BackgroundLayer struct {
	Type                string  `json:"background_type"`
	DensityBase         float64 `json:"density_base"`
	DensityPerIntensity float64 `json:"density_per_intensity"`
	SpeedBase           float64 `json:"speed_base"`
	SpeedPerStageSpeed  float64 `json:"speed_per_stage_speed"`
	AlphaMultiplier     float64 `json:"alpha_multiplier"`
}

type SmokeProfile struct {
	Enabled           bool    `json:"enabled"`
	BaseCount         int     `json:"base_count"`
	CountPerIntensity int     `json:"count_per_intensity"`
	FrameSeconds      float64 `json:"frame_seconds"`
	RiseSpeed         float64 `json:"rise_speed"`
	DriftSpeed        float64 `json:"drift_speed"`
}

type VisceraProfile struct {
	Enabled               bool `json:"enabled"`
	BodyPartsBaseCount    int  `json:"body_parts_base_count"`
	BodyPartsPerIntensity int  `json:"body_parts_per_intensity"`
	BloodBaseCount        int  `json:"blood_base_count"`
	BloodPerIntensity     int  `json:"blood_per_intensity"`
}

// ResolvedVisuals is a profile with intensity and stage speed applied.
type ResolvedVisuals struct {
	Profile           string
	BackgroundLayers  []ResolvedLayer
	SmokeCount        int
	SmokeFrameSeconds float64
	BodyPartsCount    int
	BloodCount        int
}

type ResolvedLayer struct {
	Type            string
	Density         float64
	Speed           float64
	AlphaMultiplier float64
}

var (
	visualCatalogOnce sync.Once
	visualCatalog     *VisualCatalog
	visualCatalogErr  error
)

func loadVisualCatalog() (*VisualCatalog, error) {
	visualCatalogOnce.Do(func() {
		var catalog VisualCatalog
		if err := json.Unmarshal(visualProfilesJSON, &catalog); err != nil {
			visualCatalogErr = fmt.Errorf("visual profile catalog: %w", err)
			return
		}
		visualCatalog = &catalog
	})
	return visualCatalog, visualCatalogErr
}

func (c *VisualCatalog) profile(name string) *VisualProfile {
	for i := range c.Profiles {
		if c.Profiles[i].ID == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// ResolveVisuals applies intensity and stage speed to the selected profile.
// Unknown profile names fall back to the default desert profile with a
// logged warning. Intensity is clamped to 0..4.
func ResolveVisuals(sel VisualSelection, stageSpeed float64) ResolvedVisuals {
	intensity := sel.Intensity
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 4 {
		intensity = 4
	}

	catalog, err := loadVisualCatalog()
	if err != nil {
		events.Emit("warn", "visuals.fallback", err.Error(), nil)
		return fallbackDesert(stageSpeed)
	}

	profile := catalog.profile(sel.Profile)
	if profile == nil {
		events.Emit("warn", "visuals.fallback", "unknown visual profile", map[string]interface{}{
			"profile":  sel.Profile,
			"fallback": DefaultVisualProfile,
		})
		profile = catalog.profile(DefaultVisualProfile)
	}
	if profile == nil {
		return fallbackDesert(stageSpeed)
	}
	return resolveFromProfile(profile, intensity, stageSpeed)
}

func resolveFromProfile(p *VisualProfile, intensity int, stageSpeed float64) ResolvedVisuals {
	out := ResolvedVisuals{Profile: p.ID}
	scale := float64(intensity)

	for _, layer := range p.BackgroundLayers {
		density := layer.DensityBase + layer.DensityPerIntensity*scale
		if density < 0 {
			density = 0
		}
		alpha := layer.AlphaMultiplier
		if alpha <= 0 {
			alpha = 1
		}
		if alpha > 1 {
			alpha = 1
		}
		out.BackgroundLayers = append(out.BackgroundLayers, ResolvedLayer{
			Type:            layer.Type,
			Density:         density,
			Speed:           layer.SpeedBase + layer.SpeedPerStageSpeed*stageSpeed,
			AlphaMultiplier: alpha,
		})
	}

	if p.AmbientSmoke.Enabled {
		out.SmokeCount = p.AmbientSmoke.BaseCount + p.AmbientSmoke.CountPerIntensity*intensity
		out.SmokeFrameSeconds = p.AmbientSmoke.FrameSeconds
		if out.SmokeFrameSeconds < 0.01 {
			out.SmokeFrameSeconds = 0.01
		}
	}
	if p.AmbientViscera.Enabled {
		out.BodyPartsCount = p.AmbientViscera.BodyPartsBaseCount + p.AmbientViscera.BodyPartsPerIntensity*intensity
		out.BloodCount = p.AmbientViscera.BloodBaseCount + p.AmbientViscera.BloodPerIntensity*intensity
	}
	return out
}

// fallbackDesert is the hard-coded safety net used when the compiled-in
// catalog itself is unusable.
func fallbackDesert(stageSpeed float64) ResolvedVisuals {
	return ResolvedVisuals{
		Profile: DefaultVisualProfile,
		BackgroundLayers: []ResolvedLayer{
			{Type: "dunes", Density: 0.6, Speed: 0.2 * stageSpeed, AlphaMultiplier: 1.0},
			{Type: "cacti", Density: 0.2, Speed: 0.5 * stageSpeed, AlphaMultiplier: 1.0},
		},
	}
}
