package auth

// Role is a bitset of assigned roles.
//
// Author, reviewer and requester are not roles. They are derived from
// database facts and recomputed on every rights epoch change.
type Role int

const (
	PC Role = 1 << iota
	Admin
	Chair
	Root // synthetic site contact, can do everything
)

// IsPCLike is derivable purely from role bits.
func (r Role) IsPCLike() bool {
	return r&(PC|Admin|Chair|Root) != 0
}

// Privileged returns whether the role can administer papers site-wide.
func (r Role) Privileged() bool {
	return r&(Admin|Chair|Root) != 0
}

func (r Role) Has(other Role) bool {
	return r&other == other
}

func (r Role) String() string {
	var s string
	if r.Has(PC) {
		s += "pc "
	}
	if r.Has(Admin) {
		s += "admin "
	}
	if r.Has(Chair) {
		s += "chair "
	}
	if r.Has(Root) {
		s += "root "
	}
	if s == "" {
		return "none"
	}
	return s[:len(s)-1]
}
