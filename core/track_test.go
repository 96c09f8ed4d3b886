package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wansing/confer/auth"
)

func TestParseTrackPerm(t *testing.T) {
	perm, err := ParseTrackPerm("")
	assert.NoError(t, err)
	assert.True(t, perm.Unrestricted())

	perm, err = ParseTrackPerm("+Red")
	assert.NoError(t, err)
	assert.Equal(t, "+red", perm.String())
	assert.True(t, perm.Allows(auth.ParseContactTags("red blue")))
	assert.False(t, perm.Allows(auth.ParseContactTags("blue")))

	perm, err = ParseTrackPerm("-red")
	assert.NoError(t, err)
	assert.False(t, perm.Allows(auth.ParseContactTags("red")))
	assert.True(t, perm.Allows(auth.ParseContactTags("blue")))
	assert.True(t, perm.Allows(nil))

	for _, bad := range []string{"+", "-", "red"} {
		_, err = ParseTrackPerm(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTrackRight(t *testing.T) {
	for r := TrackRight(0); r < NumTrackRights; r++ {
		parsed, err := ParseTrackRight(r.String())
		assert.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseTrackRight("fnord")
	assert.Error(t, err)
}

func TestTrackTableFromRules(t *testing.T) {
	table, err := NewTrackTableFromRules([]TrackRule{
		{Tag: "hw", Right: "view", Perm: "+hardware"},
		{Tag: "sw", Right: "view", Perm: ""},
		{Tag: "hw", Right: "admin", Perm: "+hwchair"},
		{Tag: "_", Right: "viewpdf", Perm: "-novice"},
	})
	assert.NoError(t, err)
	assert.False(t, table.Empty())
	assert.True(t, table.Sensitive(TrackView))
	assert.True(t, table.Sensitive(TrackAdmin))
	assert.True(t, table.Sensitive(TrackViewPDF))
	assert.False(t, table.Sensitive(TrackViewRev))

	hardware := auth.ParseContactTags("hardware")
	nobody := auth.ContactTags{}

	hwPaper := NewTagSet([]string{"hw"})
	assert.True(t, table.Check(hwPaper, hardware, TrackView))
	assert.False(t, table.Check(hwPaper, nobody, TrackView))

	// papers without a track tag fall back to the default track
	plain := NewTagSet([]string{"whatever"})
	assert.True(t, table.Check(plain, nobody, TrackView), "the default track does not restrict view")
	assert.False(t, table.Check(plain, auth.ParseContactTags("novice"), TrackViewPDF))
	assert.True(t, table.Check(plain, nobody, TrackViewPDF))

	_, err = NewTrackTableFromRules([]TrackRule{{Tag: "hw", Right: "fnord", Perm: ""}})
	assert.Error(t, err)
	_, err = NewTrackTableFromRules([]TrackRule{{Tag: "", Right: "view", Perm: ""}})
	assert.Error(t, err)
}

func TestTrackOrderDecides(t *testing.T) {
	table := NewTrackTable([]Track{
		{Tag: "first", Perms: permsWith(TrackView, RequireTag("a"))},
		{Tag: "second", Perms: permsWith(TrackView, RequireTag("b"))},
	})

	// a paper carrying both tags is governed by the first matching track
	both := NewTagSet([]string{"second", "first"})
	assert.True(t, table.Check(both, auth.ParseContactTags("a"), TrackView))
	assert.False(t, table.Check(both, auth.ParseContactTags("b"), TrackView))
}

func TestAdminGrantRequiresExplicitSlot(t *testing.T) {
	table := NewTrackTable([]Track{
		{Tag: "open"},
		{Tag: "hw", Perms: permsWith(TrackAdmin, RequireTag("hwchair"))},
	})

	hwchair := auth.ParseContactTags("hwchair")
	openPaper := NewTagSet([]string{"open"})
	hwPaper := NewTagSet([]string{"hw"})

	assert.True(t, table.Check(openPaper, hwchair, TrackAdmin), "unrestricted slots pass checks")
	assert.False(t, table.AdminGrant(openPaper, hwchair), "but grant nothing")
	assert.True(t, table.AdminGrant(hwPaper, hwchair))
	assert.False(t, table.AdminGrant(hwPaper, auth.ContactTags{}))
	assert.True(t, table.AdminGrantAnyTrack(hwchair))
	assert.False(t, table.AdminGrantAnyTrack(auth.ContactTags{}))
}

func TestDangerousMask(t *testing.T) {
	table := NewTrackTable([]Track{
		{Tag: "hw", Perms: permsWith(TrackView, RequireTag("hardware"))},
		{Tag: "_", Perms: permsWith(TrackAssRev, ForbidTag("novice"))},
	})

	mask := table.DangerousMaskFor(auth.ParseContactTags("hardware"))
	assert.False(t, mask.Has(TrackView), "tags that always pass are not dangerous")
	assert.False(t, mask.Has(TrackAssRev))

	mask = table.DangerousMaskFor(auth.ParseContactTags("novice"))
	assert.True(t, mask.Has(TrackView))
	assert.True(t, mask.Has(TrackAssRev))
	assert.False(t, mask.Has(TrackAdmin), "unrestricted rights are never dangerous")
}

func TestCheckAnyAndAllTracks(t *testing.T) {
	empty := NewTrackTable(nil)
	assert.True(t, empty.Empty())
	assert.True(t, empty.CheckAnyTrack(nil, TrackView))
	assert.True(t, empty.CheckAllTracks(nil, TrackView))

	table := NewTrackTable([]Track{
		{Tag: "hw", Perms: permsWith(TrackView, RequireTag("hardware"))},
		{Tag: "sw", Perms: permsWith(TrackView, RequireTag("software"))},
	})
	assert.True(t, table.CheckAnyTrack(auth.ParseContactTags("hardware"), TrackView))
	assert.False(t, table.CheckAllTracks(auth.ParseContactTags("hardware"), TrackView))
	assert.True(t, table.CheckAllTracks(auth.ParseContactTags("hardware software"), TrackView))
	assert.False(t, table.CheckAnyTrack(auth.ContactTags{}, TrackView))
}

func permsWith(right TrackRight, perm TrackPerm) [NumTrackRights]TrackPerm {
	var perms [NumTrackRights]TrackPerm
	perms[right] = perm
	return perms
}
