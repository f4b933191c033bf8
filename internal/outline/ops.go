package outline

import (
	"github.com/alucardeht/outliner/internal/apperr"
)

const (
	OpAddChapter    = "add_chapter"
	OpRemoveChapter = "remove_chapter"
	OpRenameChapter = "rename_chapter"
	OpMoveChapter   = "move_chapter"
	OpAddSection    = "add_section"
	OpRemoveSection = "remove_section"
	OpRenameSection = "rename_section"
	OpRenumber      = "renumber"
	OpAdjustLevel   = "adjust_level"
)

// Op is a serializable editor operation, as accepted by the CLI and the
// outline_edit tool.
type Op struct {
	Op        string    `json:"op"`
	Chapter   int       `json:"chapter,omitempty"`
	Section   string    `json:"section,omitempty"`
	Title     string    `json:"title,omitempty"`
	After     int       `json:"after,omitempty"`
	Before    int       `json:"before,omitempty"`
	Target    string    `json:"target,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Apply dispatches op to the matching editor method after checking that the
// operands it needs are present.
func (e *Editor) Apply(op Op) (Outcome, error) {
	at := Anchor{After: op.After, Before: op.Before}
	switch op.Op {
	case OpAddChapter:
		if err := requireTitle(op); err != nil {
			return Outcome{}, err
		}
		return e.AddChapter(op.Title, at)
	case OpRemoveChapter:
		if err := requireChapter(op); err != nil {
			return Outcome{}, err
		}
		return e.RemoveChapter(op.Chapter)
	case OpRenameChapter:
		if err := requireChapter(op); err != nil {
			return Outcome{}, err
		}
		if err := requireTitle(op); err != nil {
			return Outcome{}, err
		}
		return e.RenameChapter(op.Chapter, op.Title)
	case OpMoveChapter:
		if err := requireChapter(op); err != nil {
			return Outcome{}, err
		}
		return e.MoveChapter(op.Chapter, at)
	case OpAddSection:
		if err := requireChapter(op); err != nil {
			return Outcome{}, err
		}
		if err := requireTitle(op); err != nil {
			return Outcome{}, err
		}
		return e.AddSection(op.Chapter, op.Title)
	case OpRemoveSection:
		if op.Section == "" {
			return Outcome{}, apperr.Validation("%s requires a section number", op.Op)
		}
		return e.RemoveSection(op.Section)
	case OpRenameSection:
		if op.Section == "" {
			return Outcome{}, apperr.Validation("%s requires a section number", op.Op)
		}
		if err := requireTitle(op); err != nil {
			return Outcome{}, err
		}
		return e.RenameSection(op.Section, op.Title)
	case OpRenumber:
		return e.Renumber()
	case OpAdjustLevel:
		if op.Target == "" {
			return Outcome{}, apperr.Validation("%s requires a target chapter or section number", op.Op)
		}
		return e.AdjustLevel(op.Target, op.Direction)
	case "":
		return Outcome{}, apperr.Validation("operation is required")
	default:
		return Outcome{}, apperr.Validation("unknown operation %q", op.Op)
	}
}

func requireChapter(op Op) error {
	if op.Chapter <= 0 {
		return apperr.Validation("%s requires a positive chapter number", op.Op)
	}
	return nil
}

func requireTitle(op Op) error {
	if cleanTitle(op.Title) == "" {
		return apperr.Validation("%s requires a title", op.Op)
	}
	return nil
}
