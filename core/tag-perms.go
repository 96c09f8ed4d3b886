package core

import (
	"strings"
)

// Paper tags starting with "~" are hidden tags: they are visible only to
// administrators and to PC members passing the hidden-tag track gate.
func HiddenTag(tag string) bool {
	return strings.HasPrefix(tag, "~")
}

// CanViewTags returns whether the paper's tags are visible at all.
func (p *Paper) CanViewTags(id *Identity) bool {
	var r = p.Rights(id)
	return r.CanAdminister || r.AllowPC
}

// CanViewTag decides whether one specific tag is visible.
func (p *Paper) CanViewTag(id *Identity, tag string) bool {
	if !p.CanViewTags(id) {
		return false
	}
	var r = p.Rights(id)
	if !HiddenTag(tag) || r.CanAdminister {
		return true
	}
	if id.dangerousMask.Has(TrackHiddenTag) &&
		!p.db.Tracks().Check(p.Tags, id.tags, TrackHiddenTag) {
		return false
	}
	return true
}

// PermSetTag decides whether the identity may add or remove the tag on this
// paper. OverrideTagChecks skips the hidden-tag track gate.
func (p *Paper) PermSetTag(id *Identity, tag string) *Reason {
	if id.Disabled() {
		return deny(ReasonDisabledAccount)
	}
	var r = p.Rights(id)
	if r.CanAdminister {
		return nil
	}
	if !r.AllowPC {
		if r.AllowPCBroad {
			return &Reason{Code: ReasonConflict, OverrideAvailable: r.AllowAdminister}
		}
		return deny(ReasonMissingPermission)
	}
	if id.HasOverride(OverrideTagChecks) {
		return nil
	}
	if HiddenTag(tag) {
		if id.dangerousMask.Has(TrackHiddenTag) &&
			!p.db.Tracks().Check(p.Tags, id.tags, TrackHiddenTag) {
			return deny(ReasonMissingPermission)
		}
	}
	return nil
}

func (p *Paper) CanSetTag(id *Identity, tag string) bool {
	return p.PermSetTag(id, tag) == nil
}
