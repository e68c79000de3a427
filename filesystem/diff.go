package filesystem

// EditOp is one step of a child list reconciliation
type EditOp uint8

const (
	EditInsert EditOp = iota
	EditRemove
)

// Edit inserts Name at, or removes it from, Index of the list as it stands
// after all previous edits were applied
type Edit struct {
	Op    EditOp
	Name  string
	Index int
}

// DiffSorted computes the edits turning the sorted list have into the sorted
// list want. Names present in both are left untouched.
func DiffSorted(have, want []string) []Edit {
	var edits []Edit
	i, j, pos := 0, 0, 0
	for i < len(want) || j < len(have) {
		switch {
		case j >= len(have) || (i < len(want) && want[i] < have[j]):
			edits = append(edits, Edit{Op: EditInsert, Name: want[i], Index: pos})
			i++
			pos++
		case i >= len(want) || want[i] > have[j]:
			edits = append(edits, Edit{Op: EditRemove, Name: have[j], Index: pos})
			j++
		default:
			i++
			j++
			pos++
		}
	}
	return edits
}
