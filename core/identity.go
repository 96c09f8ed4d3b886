package core

import (
	"github.com/wansing/confer/auth"
)

// Override bits let a user bypass single checks for the current call stack.
// They are never persisted.
type Override int

const (
	OverrideConflict       Override = 1 << iota // compute rights as if unconflicted
	OverrideDeadlines                           // ignore deadlines
	OverrideEditConditions                      // ignore submission/withdrawal state on edits
	OverrideTagChecks                           // ignore tag permission checks
)

// Identity is the activated per-request identity: the user row (nil for
// anonymous capability or token bearers), assigned roles, contact tags,
// capabilities and overrides, plus derived bits which are recomputed
// whenever the rights epoch has moved on.
type Identity struct {
	db           *CoreDB
	user         auth.DBUser
	roles        auth.Role
	tags         auth.ContactTags // includes the implicit "pc" tag
	capabilities auth.Capabilities
	reviewToken  int64

	overrides Override

	// derived fields, valid for epoch
	epoch         uint64
	epochValid    bool
	isAuthor      bool
	isReviewer    bool
	isRequester   bool
	dangerousMask TrackMask
}

// NewIdentity activates a user. Persisted capabilities are merged in;
// further capabilities can arrive later from URL parameters.
func (c *CoreDB) NewIdentity(u auth.DBUser) *Identity {
	var id = &Identity{
		db:           c,
		capabilities: auth.Capabilities{},
		tags:         auth.ContactTags{},
	}
	if u != nil {
		id.user = u
		id.roles = u.Roles()
		for tag, weight := range u.ContactTags() {
			id.tags[tag] = weight
		}
		if caps, err := c.CapabilityDB.GetCapabilities(u.ID()); err == nil {
			for key, value := range caps {
				id.capabilities[key] = value
			}
		}
	}
	if id.roles.Has(auth.PC) {
		id.tags["pc"] = 0
	}
	return id
}

// AnonymousIdentity activates nobody. Capabilities and review tokens make
// it useful anyway.
func (c *CoreDB) AnonymousIdentity() *Identity {
	return c.NewIdentity(nil)
}

// RootIdentity is the synthetic site contact. It administers everything.
func (c *CoreDB) RootIdentity() *Identity {
	var id = c.NewIdentity(nil)
	id.roles = auth.Root
	return id
}

// ID returns the contact id, zero for anonymous identities.
func (id *Identity) ID() int {
	if id.user == nil {
		return 0
	}
	return id.user.ID()
}

func (id *Identity) Name() string {
	if id.user == nil {
		return ""
	}
	return id.user.Name()
}

func (id *Identity) User() auth.DBUser {
	return id.user
}

func (id *Identity) Roles() auth.Role {
	return id.roles
}

func (id *Identity) Disabled() bool {
	return id.user != nil && id.user.Disabled()
}

func (id *Identity) Tags() auth.ContactTags {
	return id.tags
}

func (id *Identity) HasTag(tag string) bool {
	return id.tags.Has(tag)
}

func (id *Identity) Capabilities() auth.Capabilities {
	return id.capabilities
}

// AddCapability attaches a capability for the current request only.
// Persisted grants go through CoreDB.GrantCapability.
func (id *Identity) AddCapability(key string, value int) {
	id.capabilities[key] = value
}

// SetReviewToken attaches a presented review token.
func (id *Identity) SetReviewToken(token int64) {
	id.reviewToken = token
}

func (id *Identity) ReviewToken() int64 {
	return id.reviewToken
}

// SetOverrides replaces the override bits and returns the previous value,
// so callers can restore it with defer.
func (id *Identity) SetOverrides(o Override) Override {
	var old = id.overrides
	id.overrides = o
	return old
}

func (id *Identity) Overrides() Override {
	return id.overrides
}

func (id *Identity) HasOverride(o Override) bool {
	return id.overrides&o == o
}

// refresh recomputes the derived fields if the rights epoch has moved on.
// Database errors leave the affected bit at its deny default.
func (id *Identity) refresh() {
	var epoch = id.db.RightsEpoch()
	if id.epochValid && id.epoch == epoch {
		return
	}
	id.isAuthor = false
	id.isReviewer = false
	id.isRequester = false
	if id.user != nil {
		if conflicts, err := id.db.ConflictDB.GetConflictsOf(id.user.ID()); err == nil {
			for _, conflict := range conflicts {
				if Conflict(conflict).IsAuthor() {
					id.isAuthor = true
					break
				}
			}
		}
		if n, err := id.db.ReviewDB.CountReviewsOf(id.user.ID()); err == nil {
			id.isReviewer = n > 0
		}
		if n, err := id.db.ReviewDB.CountReviewRequestsBy(id.user.ID()); err == nil {
			id.isRequester = n > 0
		}
	}
	id.dangerousMask = id.db.Tracks().DangerousMaskFor(id.tags)
	id.epoch = epoch
	id.epochValid = true
}

// IsAuthor returns whether the user authors any paper. Derived, never hand-set.
func (id *Identity) IsAuthor() bool {
	id.refresh()
	return id.isAuthor
}

// IsReviewer returns whether the user has any review assignment.
func (id *Identity) IsReviewer() bool {
	id.refresh()
	return id.isReviewer
}

// IsRequester returns whether the user has requested any review.
func (id *Identity) IsRequester() bool {
	id.refresh()
	return id.isRequester
}

// DangerousTrackMask returns the track rights this identity could fail.
func (id *Identity) DangerousTrackMask() TrackMask {
	id.refresh()
	return id.dangerousMask
}

// IsTrackManager returns whether some track explicitly grants the admin
// right to this identity. Site-wide pre-check, no concrete paper needed.
func (id *Identity) IsTrackManager() bool {
	return id.db.Tracks().AdminGrantAnyTrack(id.tags)
}

// CanAdministerAny returns whether some paper could exist that this
// identity administers. Site-wide pre-check for menus and listings.
func (id *Identity) CanAdministerAny() bool {
	if id.Disabled() {
		return false
	}
	if id.roles.Privileged() {
		return true
	}
	return id.roles.Has(auth.PC) && id.IsTrackManager()
}

// CanViewSomePaper returns whether any paper at all could be visible.
func (id *Identity) CanViewSomePaper() bool {
	if id.Disabled() {
		return false
	}
	if id.roles.IsPCLike() && id.db.Tracks().CheckAnyTrack(id.tags, TrackView) {
		return true
	}
	if id.IsAuthor() || id.IsReviewer() {
		return true
	}
	return len(id.capabilities) > 0 || id.reviewToken != 0
}

// CanAssignSomeReview returns whether the identity could assign reviews on
// some track.
func (id *Identity) CanAssignSomeReview() bool {
	if !id.CanAdministerAny() {
		return false
	}
	return id.db.Tracks().CheckAnyTrack(id.tags, TrackAssRev)
}
