package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the five scene variants.
type Kind int

const (
	KindMenu Kind = iota
	KindLoading
	KindDialogue
	KindDilemma
	KindEnding
)

func (k Kind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindLoading:
		return "loading"
	case KindDialogue:
		return "dialogue"
	case KindDilemma:
		return "dilemma"
	case KindEnding:
		return "ending"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ID identifies one scene. Name is empty for Menu and Loading; for the
// other kinds it is the catalog id, e.g. "lab_1.near_sighted_bandit" or
// "path_inaction.3.fail". IDs are comparable and usable as map keys.
type ID struct {
	Kind Kind
	Name string
}

var (
	Menu    = ID{Kind: KindMenu}
	Loading = ID{Kind: KindLoading}
)

func Dialogue(name string) ID { return ID{Kind: KindDialogue, Name: name} }
func Dilemma(name string) ID  { return ID{Kind: KindDilemma, Name: name} }
func Ending(name string) ID   { return ID{Kind: KindEnding, Name: name} }

func (id ID) String() string {
	if id.Name == "" {
		return id.Kind.String()
	}
	return id.Kind.String() + ":" + id.Name
}

// pathFamily describes a linear sub-sequence of scenes sharing an id prefix
// with an embedded stage index.
type pathFamily struct {
	prefix   string
	minStage int
	maxStage int
}

var dilemmaPathFamilies = []pathFamily{
	{prefix: "path_inaction", minStage: 0, maxStage: 6},
	{prefix: "path_deontological", minStage: 0, maxStage: 2},
	{prefix: "path_utilitarian", minStage: 0, maxStage: 2},
}

var staticDilemmaNames = []string{
	"lab_0.incompetent_bandit",
	"lab_1.near_sighted_bandit",
	"lab_2.the_trolley_problem",
	"lab_3.asleep_at_the_job",
	"lab_4.random_deaths",
}

var staticDialogueNames = []string{
	"lab_0.intro",
	"lab_1.a.fail",
	"lab_1.a.pass_indecisive",
	"lab_1.a.fail_very_indecisive",
	"lab_1.a.pass",
	"lab_1.a.pass_slow",
	"lab_1.b.intro",
	"lab_2.a.fail_indecisive",
	"lab_2.a.fail",
	"lab_2.a.pass_slow_again",
	"lab_2.a.pass_slow",
	"lab_2.a.pass",
	"lab_2.b.intro",
	"lab_3.a.fail_indecisive",
	"lab_3.a.fail_inaction",
	"lab_3.a.pass_utilitarian",
	"lab_3.b.intro",
	"lab_4.outro",
}

var endingNames = []string{
	"idiotic_psychopath",
	"impatient_psychopath",
	"leverophile",
	"selective_deontologist",
	"true_deontologist",
	"true_neutral",
}

// parsePathStage splits "prefix.N[.suffix]" and bounds-checks N against the
// family. Returns the stage, any trailing suffix, and whether it matched.
func parsePathStage(name string, fam pathFamily) (stage int, suffix string, ok bool) {
	rest, found := strings.CutPrefix(name, fam.prefix+".")
	if !found {
		return 0, "", false
	}
	stagePart, suffix, _ := strings.Cut(rest, ".")
	stage, err := strconv.Atoi(stagePart)
	if err != nil || stage < fam.minStage || stage > fam.maxStage {
		return 0, "", false
	}
	return stage, suffix, true
}

// KnownDilemma reports whether name is a valid dilemma id, static or
// path-family.
func KnownDilemma(name string) bool {
	for _, n := range staticDilemmaNames {
		if n == name {
			return true
		}
	}
	for _, fam := range dilemmaPathFamilies {
		if _, suffix, ok := parsePathStage(name, fam); ok && suffix == "" {
			return true
		}
	}
	return false
}

// KnownDialogue reports whether name is a valid dialogue id. Path-family
// dialogues carry a stage index and a pass/fail outcome suffix.
func KnownDialogue(name string) bool {
	for _, n := range staticDialogueNames {
		if n == name {
			return true
		}
	}
	for _, fam := range dilemmaPathFamilies {
		if _, suffix, ok := parsePathStage(name, fam); ok {
			if suffix == "pass" || suffix == "fail" {
				return true
			}
		}
	}
	return false
}

// KnownEnding reports whether name is a valid ending id.
func KnownEnding(name string) bool {
	for _, n := range endingNames {
		if n == name {
			return true
		}
	}
	return false
}

// Known reports whether the id resolves to content.
func Known(id ID) bool {
	switch id.Kind {
	case KindMenu, KindLoading:
		return id.Name == ""
	case KindDialogue:
		return KnownDialogue(id.Name)
	case KindDilemma:
		return KnownDilemma(id.Name)
	case KindEnding:
		return KnownEnding(id.Name)
	default:
		return false
	}
}

// PathStage extracts the embedded stage index from a path-family id.
func PathStage(id ID) (int, bool) {
	if id.Name == "" {
		return 0, false
	}
	for _, fam := range dilemmaPathFamilies {
		if stage, _, ok := parsePathStage(id.Name, fam); ok {
			return stage, true
		}
	}
	return 0, false
}

// PathFamily returns the family prefix of a path-family id, if any.
func PathFamily(id ID) (string, bool) {
	for _, fam := range dilemmaPathFamilies {
		if _, _, ok := parsePathStage(id.Name, fam); ok {
			return fam.prefix, true
		}
	}
	return "", false
}

// NextInPath returns the dilemma one stage further along the same path
// family, or false at the family's end.
func NextInPath(id ID) (ID, bool) {
	if id.Kind != KindDilemma {
		return ID{}, false
	}
	for _, fam := range dilemmaPathFamilies {
		stage, suffix, ok := parsePathStage(id.Name, fam)
		if !ok || suffix != "" {
			continue
		}
		if stage >= fam.maxStage {
			return ID{}, false
		}
		return Dilemma(fmt.Sprintf("%s.%d", fam.prefix, stage+1)), true
	}
	return ID{}, false
}

// AllDilemmaIDs enumerates every dilemma the catalog carries, for graph
// validation.
func AllDilemmaIDs() []ID {
	out := make([]ID, 0, len(staticDilemmaNames)+16)
	for _, n := range staticDilemmaNames {
		out = append(out, Dilemma(n))
	}
	for _, fam := range dilemmaPathFamilies {
		for stage := fam.minStage; stage <= fam.maxStage; stage++ {
			out = append(out, Dilemma(fmt.Sprintf("%s.%d", fam.prefix, stage)))
		}
	}
	return out
}
