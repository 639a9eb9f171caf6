package scene

import (
	"embed"
	"encoding/json"
	"fmt"
)

// Campaign content is compiled in; there is no filesystem I/O for scene
// data at runtime.
//
//go:embed content
var contentFS embed.FS

// contentPath maps an id to its embedded file. Path-family dialogues share
// one pass script per family while each stage carries its own fail script.
func contentPath(id ID) (string, error) {
	switch id.Kind {
	case KindDilemma:
		if !KnownDilemma(id.Name) {
			return "", fmt.Errorf("unknown dilemma id %q", id.Name)
		}
		return "content/dilemmas/" + id.Name + ".json", nil
	case KindDialogue:
		if !KnownDialogue(id.Name) {
			return "", fmt.Errorf("unknown dialogue id %q", id.Name)
		}
		if fam, ok := PathFamily(id); ok {
			stage, suffix, _ := parsePathStage(id.Name, familyByPrefix(fam))
			if suffix == "pass" {
				return "content/dialogues/" + fam + ".pass.json", nil
			}
			return fmt.Sprintf("content/dialogues/%s.%d.fail.json", fam, stage), nil
		}
		return "content/dialogues/" + id.Name + ".json", nil
	case KindEnding:
		if !KnownEnding(id.Name) {
			return "", fmt.Errorf("unknown ending id %q", id.Name)
		}
		return "content/endings/" + id.Name + ".json", nil
	default:
		return "", fmt.Errorf("scene %s carries no content", id)
	}
}

func familyByPrefix(prefix string) pathFamily {
	for _, fam := range dilemmaPathFamilies {
		if fam.prefix == prefix {
			return fam
		}
	}
	return pathFamily{}
}

// Resolve returns the raw content blob for an id.
func Resolve(id ID) ([]byte, error) {
	path, err := contentPath(id)
	if err != nil {
		return nil, err
	}
	data, err := contentFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content missing for %s: %w", id, err)
	}
	return data, nil
}

// DialogueLine is one beat of a dialogue script.
type DialogueLine struct {
	Character   string `json:"character"`
	Dialogue    string `json:"dialogue"`
	Instruction string `json:"instruction"`
}

// DialogueScript is the parsed form of a dialogue scene's content.
type DialogueScript struct {
	MusicPath string         `json:"music_path,omitempty"`
	Lines     []DialogueLine `json:"lines"`
}

// LoadDialogue parses the script for a dialogue id.
func LoadDialogue(id ID) (*DialogueScript, error) {
	if id.Kind != KindDialogue {
		return nil, fmt.Errorf("%s is not a dialogue", id)
	}
	data, err := Resolve(id)
	if err != nil {
		return nil, err
	}
	var script DialogueScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("dialogue %s: %w", id, err)
	}
	if len(script.Lines) == 0 {
		return nil, fmt.Errorf("dialogue %s has no lines", id)
	}
	return &script, nil
}

// EndingScript is the parsed form of an ending scene's content.
type EndingScript struct {
	Title     string `json:"title"`
	Verdict   string `json:"verdict"`
	Epitaph   string `json:"epitaph"`
	MusicPath string `json:"music_path,omitempty"`
}

// LoadEnding parses the script for an ending id.
func LoadEnding(id ID) (*EndingScript, error) {
	if id.Kind != KindEnding {
		return nil, fmt.Errorf("%s is not an ending", id)
	}
	data, err := Resolve(id)
	if err != nil {
		return nil, err
	}
	var script EndingScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("ending %s: %w", id, err)
	}
	return &script, nil
}
