package scene

import (
	"encoding/json"
	"fmt"
)

// Ref is the wire form of a scene id, as it appears in the campaign graph.
type Ref struct {
	Kind string `json:"kind"`
	Name string `json:"id,omitempty"`
}

// Resolve turns a wire ref into a typed id, rejecting unknown kinds and
// names. The context string lands in the error so graph validation can point
// at the offending location.
func (r Ref) Resolve() (ID, error) {
	switch r.Kind {
	case "menu":
		return Menu, nil
	case "loading":
		return Loading, nil
	case "dialogue":
		if !KnownDialogue(r.Name) {
			return ID{}, fmt.Errorf("unknown dialogue id %q", r.Name)
		}
		return Dialogue(r.Name), nil
	case "dilemma":
		if !KnownDilemma(r.Name) {
			return ID{}, fmt.Errorf("unknown dilemma id %q", r.Name)
		}
		return Dilemma(r.Name), nil
	case "ending":
		if !KnownEnding(r.Name) {
			return ID{}, fmt.Errorf("unknown ending id %q", r.Name)
		}
		return Ending(r.Name), nil
	default:
		return ID{}, fmt.Errorf("unknown scene kind %q", r.Kind)
	}
}

// RefOf converts a typed id back to its wire form.
func RefOf(id ID) Ref {
	return Ref{Kind: id.Kind.String(), Name: id.Name}
}

// MarshalJSON emits the id in wire form so API snapshots and the graph
// share one representation.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(RefOf(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var r Ref
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	resolved, err := r.Resolve()
	if err != nil {
		return err
	}
	*id = resolved
	return nil
}
