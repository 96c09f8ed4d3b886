package core

// Conflict is the per-(user, paper) conflict level. A missing conflict row
// means ConflictNone.
//
// Levels up to MaxUnconflicted count as unconflicted for PC and review
// rights. Levels of ConflictAuthor and above mean the user is an author of
// the paper.
type Conflict int

const (
	ConflictNone     Conflict = 0
	ConflictPinned   Conflict = 1 // pinned unconflicted by an administrator
	MaxUnconflicted  Conflict = 1
	ConflictPersonal Conflict = 2 // smallest "real" conflict
	ConflictAuthor   Conflict = 32
)

func (c Conflict) IsUnconflicted() bool {
	return c <= MaxUnconflicted
}

func (c Conflict) IsConflicted() bool {
	return c > MaxUnconflicted
}

func (c Conflict) IsAuthor() bool {
	return c >= ConflictAuthor
}

func (c Conflict) String() string {
	switch {
	case c <= ConflictNone:
		return "none"
	case c == ConflictPinned:
		return "pinned unconflicted"
	case c < ConflictAuthor:
		return "conflicted"
	default:
		return "author"
	}
}

type ConflictDB interface {
	GetConflict(paperID, contactID int) (int, error)     // zero if there is no row
	GetConflicts(paperID int) (map[int]int, error)       // contact id -> conflict
	GetConflictsOf(contactID int) (map[int]int, error)   // paper id -> conflict
	SetConflict(paperID, contactID, conflict int) error  // zero removes the row
}
