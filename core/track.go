package core

import (
	"fmt"
	"strings"

	"github.com/wansing/confer/auth"
)

// A track is a named partition of permission rules keyed by paper tag.
// Papers carrying the track's tag are subject to the track's permission
// vector. The tag "_" names the default track, which applies to papers
// carrying no other track tag.
const DefaultTrackTag = "_"

// TrackRight enumerates the permission kinds a track can restrict.
type TrackRight int

const (
	TrackView TrackRight = iota
	TrackViewPDF
	TrackViewRev
	TrackViewRevID
	TrackAssRev
	TrackUnassRev
	TrackViewTracker
	TrackAdmin
	TrackHiddenTag
	TrackViewAllRev
	NumTrackRights
)

var trackRightNames = [NumTrackRights]string{
	"view", "viewpdf", "viewrev", "viewrevid", "assrev",
	"unassrev", "viewtracker", "admin", "hiddentag", "viewallrev",
}

func (r TrackRight) String() string {
	if r < 0 || r >= NumTrackRights {
		return "unknown"
	}
	return trackRightNames[r]
}

func ParseTrackRight(s string) (TrackRight, error) {
	for i, name := range trackRightNames {
		if name == s {
			return TrackRight(i), nil
		}
	}
	return 0, fmt.Errorf("unknown track right: %s", s)
}

// TrackMask is a bitset over TrackRights.
type TrackMask uint16

func (m TrackMask) Has(r TrackRight) bool {
	return m&(1<<uint(r)) != 0
}

type trackPermMode int

const (
	permUnrestricted trackPermMode = iota
	permRequired
	permForbidden
)

// TrackPerm is one slot of a track's permission vector. The zero value is
// unrestricted.
type TrackPerm struct {
	mode trackPermMode
	tag  string
}

func RequireTag(tag string) TrackPerm {
	return TrackPerm{permRequired, strings.ToLower(tag)}
}

func ForbidTag(tag string) TrackPerm {
	return TrackPerm{permForbidden, strings.ToLower(tag)}
}

// ParseTrackPerm reads the stored text form: "+tag" requires the contact
// tag, "-tag" forbids it, the empty string does not restrict.
func ParseTrackPerm(s string) (TrackPerm, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return TrackPerm{}, nil
	case s[0] == '+' && len(s) > 1:
		return RequireTag(s[1:]), nil
	case s[0] == '-' && len(s) > 1:
		return ForbidTag(s[1:]), nil
	default:
		return TrackPerm{}, fmt.Errorf("bad track permission: %q", s)
	}
}

func (p TrackPerm) Unrestricted() bool {
	return p.mode == permUnrestricted
}

func (p TrackPerm) Allows(tags auth.ContactTags) bool {
	switch p.mode {
	case permRequired:
		return tags.Has(p.tag)
	case permForbidden:
		return !tags.Has(p.tag)
	default:
		return true
	}
}

func (p TrackPerm) String() string {
	switch p.mode {
	case permRequired:
		return "+" + p.tag
	case permForbidden:
		return "-" + p.tag
	default:
		return ""
	}
}

// Track is one table entry: a tag plus one permission slot per right.
type Track struct {
	Tag   string
	Perms [NumTrackRights]TrackPerm
}

// TrackTable is the ordered track list plus the default track and the
// sensitivity mask. It is immutable after load; redefining tracks builds a
// new table and bumps the rights epoch.
type TrackTable struct {
	tracks      []Track // in table order, default excluded
	def         *Track  // nil if no default track is defined
	sensitivity TrackMask
}

// TrackRule is the stored form of one permission slot.
type TrackRule struct {
	Tag   string
	Right string
	Perm  string
}

type TrackDB interface {
	GetTrackRules() ([]TrackRule, error) // in table order
	InsertTrackRule(tag, right, perm string) error
	RemoveTrack(tag string) error
}

// NewTrackTable builds a table from tracks in order. A track with tag "_"
// becomes the default track.
func NewTrackTable(tracks []Track) *TrackTable {
	var t = &TrackTable{}
	for i := range tracks {
		var track = tracks[i]
		track.Tag = strings.ToLower(track.Tag)
		for r := TrackRight(0); r < NumTrackRights; r++ {
			if !track.Perms[r].Unrestricted() {
				t.sensitivity |= 1 << uint(r)
			}
		}
		if track.Tag == DefaultTrackTag {
			t.def = &track
		} else {
			t.tracks = append(t.tracks, track)
		}
	}
	return t
}

// NewTrackTableFromRules parses stored rules, grouping them by tag in
// first-appearance order.
func NewTrackTableFromRules(rules []TrackRule) (*TrackTable, error) {
	var order []string
	var byTag = map[string]*Track{}
	for _, rule := range rules {
		var tag = strings.ToLower(strings.TrimSpace(rule.Tag))
		if tag == "" {
			return nil, fmt.Errorf("track rule without tag")
		}
		track, ok := byTag[tag]
		if !ok {
			track = &Track{Tag: tag}
			byTag[tag] = track
			order = append(order, tag)
		}
		right, err := ParseTrackRight(rule.Right)
		if err != nil {
			return nil, err
		}
		perm, err := ParseTrackPerm(rule.Perm)
		if err != nil {
			return nil, err
		}
		track.Perms[right] = perm
	}
	var tracks = make([]Track, 0, len(order))
	for _, tag := range order {
		tracks = append(tracks, *byTag[tag])
	}
	return NewTrackTable(tracks), nil
}

func (t *TrackTable) Empty() bool {
	return len(t.tracks) == 0 && t.def == nil
}

// Sensitive returns in O(1) whether any track restricts the given right.
// Hot paths must consult it before calling Check.
func (t *TrackTable) Sensitive(right TrackRight) bool {
	return t.sensitivity.Has(right)
}

// trackFor returns the first track whose tag the paper carries, falling
// back to the default track. The result can be nil.
func (t *TrackTable) trackFor(paperTags TagSet) *Track {
	for i := range t.tracks {
		if paperTags.Has(t.tracks[i].Tag) {
			return &t.tracks[i]
		}
	}
	return t.def
}

// Check evaluates the right for a paper's track against the contact tags.
// No matching track, or an unrestricted slot, allows.
func (t *TrackTable) Check(paperTags TagSet, tags auth.ContactTags, right TrackRight) bool {
	var track = t.trackFor(paperTags)
	if track == nil {
		return true
	}
	return track.Perms[right].Allows(tags)
}

// CheckAnyTrack returns whether some track (including the default) grants
// the right. Used for site-wide pre-checks without a concrete paper.
func (t *TrackTable) CheckAnyTrack(tags auth.ContactTags, right TrackRight) bool {
	if t.Empty() {
		return true
	}
	for i := range t.tracks {
		if t.tracks[i].Perms[right].Allows(tags) {
			return true
		}
	}
	if t.def != nil && t.def.Perms[right].Allows(tags) {
		return true
	}
	return false
}

// CheckAllTracks returns whether every track grants the right.
func (t *TrackTable) CheckAllTracks(tags auth.ContactTags, right TrackRight) bool {
	for i := range t.tracks {
		if !t.tracks[i].Perms[right].Allows(tags) {
			return false
		}
	}
	if t.def != nil && !t.def.Perms[right].Allows(tags) {
		return false
	}
	return true
}

// AdminGrant returns whether the paper's track explicitly grants the admin
// right to the contact tags. Unlike Check, an unrestricted admin slot does
// not grant anything: administering must be granted by a tag.
func (t *TrackTable) AdminGrant(paperTags TagSet, tags auth.ContactTags) bool {
	var track = t.trackFor(paperTags)
	if track == nil || track.Perms[TrackAdmin].Unrestricted() {
		return false
	}
	return track.Perms[TrackAdmin].Allows(tags)
}

// AdminGrantAnyTrack returns whether some track explicitly grants the admin
// right to the contact tags.
func (t *TrackTable) AdminGrantAnyTrack(tags auth.ContactTags) bool {
	for i := range t.tracks {
		if p := t.tracks[i].Perms[TrackAdmin]; !p.Unrestricted() && p.Allows(tags) {
			return true
		}
	}
	if t.def != nil {
		if p := t.def.Perms[TrackAdmin]; !p.Unrestricted() && p.Allows(tags) {
			return true
		}
	}
	return false
}

// DangerousMaskFor returns the rights whose track checks could fail for the
// given contact tags. An unset bit means Check can be skipped entirely.
func (t *TrackTable) DangerousMaskFor(tags auth.ContactTags) TrackMask {
	var mask TrackMask
	for r := TrackRight(0); r < NumTrackRights; r++ {
		if !t.sensitivity.Has(r) {
			continue
		}
		for i := range t.tracks {
			if !t.tracks[i].Perms[r].Allows(tags) {
				mask |= 1 << uint(r)
				break
			}
		}
		if mask.Has(r) {
			continue
		}
		if t.def != nil && !t.def.Perms[r].Allows(tags) {
			mask |= 1 << uint(r)
		}
	}
	return mask
}
