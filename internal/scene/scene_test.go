package scene

import (
	"encoding/json"
	"testing"
)

func TestKnownDilemmaIDs(t *testing.T) {
	for _, name := range []string{
		"lab_0.incompetent_bandit",
		"lab_2.the_trolley_problem",
		"path_inaction.0",
		"path_inaction.6",
		"path_deontological.2",
		"path_utilitarian.1",
	} {
		if !KnownDilemma(name) {
			t.Errorf("%q should be a known dilemma", name)
		}
	}
	for _, name := range []string{
		"lab_999.invalid",
		"path_inaction.7",
		"path_inaction.-1",
		"path_inaction",
		"path_utilitarian.3",
	} {
		if KnownDilemma(name) {
			t.Errorf("%q should not be a known dilemma", name)
		}
	}
}

func TestKnownDialogueIDs(t *testing.T) {
	for _, name := range []string{
		"lab_0.intro",
		"lab_1.a.pass",
		"lab_4.outro",
		"path_inaction.3.pass",
		"path_inaction.6.fail",
		"path_deontological.0.fail",
	} {
		if !KnownDialogue(name) {
			t.Errorf("%q should be a known dialogue", name)
		}
	}
	for _, name := range []string{
		"lab_1.a.shrug",
		"path_inaction.3.maybe",
		"path_inaction.9.pass",
	} {
		if KnownDialogue(name) {
			t.Errorf("%q should not be a known dialogue", name)
		}
	}
}

func TestPathStageAndNext(t *testing.T) {
	id := Dilemma("path_inaction.3")
	stage, ok := PathStage(id)
	if !ok || stage != 3 {
		t.Fatalf("PathStage = %d,%v, want 3,true", stage, ok)
	}
	next, ok := NextInPath(id)
	if !ok || next.Name != "path_inaction.4" {
		t.Errorf("NextInPath = %v,%v, want path_inaction.4", next, ok)
	}
	if _, ok := NextInPath(Dilemma("path_inaction.6")); ok {
		t.Error("path end should have no next stage")
	}
	if _, ok := PathStage(Dilemma("lab_2.the_trolley_problem")); ok {
		t.Error("static id has no path stage")
	}
}

func TestEveryDilemmaIDResolves(t *testing.T) {
	ids := AllDilemmaIDs()
	if len(ids) != 18 {
		t.Fatalf("catalog lists %d dilemmas, want 18", len(ids))
	}
	for _, id := range ids {
		if _, err := Resolve(id); err != nil {
			t.Errorf("dilemma %s has no content: %v", id, err)
		}
	}
}

func TestDialogueContentResolves(t *testing.T) {
	for _, name := range staticDialogueNames {
		if _, err := LoadDialogue(Dialogue(name)); err != nil {
			t.Errorf("dialogue %s: %v", name, err)
		}
	}
	// Path families: pass scripts are shared, fail scripts are per-stage.
	script, err := LoadDialogue(Dialogue("path_inaction.2.pass"))
	if err != nil {
		t.Fatalf("shared pass script: %v", err)
	}
	other, err := LoadDialogue(Dialogue("path_inaction.5.pass"))
	if err != nil {
		t.Fatalf("shared pass script: %v", err)
	}
	if script.Lines[0].Dialogue != other.Lines[0].Dialogue {
		t.Error("pass scripts within a family should share content")
	}
	for stage := 0; stage <= 6; stage++ {
		id := Dialogue("path_inaction." + string(rune('0'+stage)) + ".fail")
		if _, err := LoadDialogue(id); err != nil {
			t.Errorf("fail script stage %d: %v", stage, err)
		}
	}
}

func TestEndingContentResolves(t *testing.T) {
	for _, name := range endingNames {
		script, err := LoadEnding(Ending(name))
		if err != nil {
			t.Errorf("ending %s: %v", name, err)
			continue
		}
		if script.Title == "" || script.Verdict == "" {
			t.Errorf("ending %s missing title or verdict", name)
		}
	}
}

func TestRefRoundTrip(t *testing.T) {
	id := Dilemma("lab_1.near_sighted_bandit")
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatal(err)
	}
	var back ID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Errorf("round trip changed id: %v != %v", back, id)
	}
}

func TestRefRejectsUnknownIDs(t *testing.T) {
	if _, err := (Ref{Kind: "dilemma", Name: "lab_999.invalid"}).Resolve(); err == nil {
		t.Error("unknown dilemma id should be rejected")
	}
	if _, err := (Ref{Kind: "chase_scene", Name: "x"}).Resolve(); err == nil {
		t.Error("unknown kind should be rejected")
	}
	if id, err := (Ref{Kind: "menu"}).Resolve(); err != nil || id != Menu {
		t.Error("menu ref should resolve")
	}
}

func TestResolveVisualsFallsBack(t *testing.T) {
	resolved := ResolveVisuals(VisualSelection{Profile: "volcano", Intensity: 2}, 70)
	if resolved.Profile != DefaultVisualProfile {
		t.Errorf("unknown profile resolved to %q, want %q", resolved.Profile, DefaultVisualProfile)
	}
	if len(resolved.BackgroundLayers) == 0 {
		t.Error("fallback profile should carry background layers")
	}
}

func TestResolveVisualsScalesWithIntensity(t *testing.T) {
	calm := ResolveVisuals(VisualSelection{Profile: DefaultVisualProfile, Intensity: 0}, 70)
	grim := ResolveVisuals(VisualSelection{Profile: DefaultVisualProfile, Intensity: 4}, 70)

	if grim.BloodCount <= calm.BloodCount {
		t.Errorf("viscera should scale with intensity: %d vs %d", calm.BloodCount, grim.BloodCount)
	}
	if grim.SmokeCount <= calm.SmokeCount {
		t.Errorf("smoke should scale with intensity: %d vs %d", calm.SmokeCount, grim.SmokeCount)
	}
	// Out-of-range intensity clamps rather than extrapolating.
	clamped := ResolveVisuals(VisualSelection{Profile: DefaultVisualProfile, Intensity: 40}, 70)
	if clamped.BloodCount != grim.BloodCount {
		t.Errorf("intensity should clamp to 4: %d vs %d", clamped.BloodCount, grim.BloodCount)
	}
}
