package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContactTags(t *testing.T) {
	tags := ParseContactTags("  Hardware heavy#1.5 broken# ")
	assert.Len(t, tags, 3)
	assert.True(t, tags.Has("hardware"))
	assert.True(t, tags.Has("HardWare"))
	assert.False(t, tags.Has("software"))

	weight, ok := tags.Value("heavy")
	assert.True(t, ok)
	assert.Equal(t, 1.5, weight)

	weight, ok = tags.Value("broken")
	assert.True(t, ok, "a malformed weight keeps the tag")
	assert.Zero(t, weight)

	assert.Empty(t, ParseContactTags("   "))
}

func TestContactTagsString(t *testing.T) {
	tags := ParseContactTags("zulu alpha#2")
	assert.Equal(t, "alpha#2 zulu", tags.String())
	assert.Equal(t, tags, ParseContactTags(tags.String()))
}

func TestRoles(t *testing.T) {
	assert.True(t, (PC | Chair).Has(PC))
	assert.False(t, PC.Has(Chair))
	assert.True(t, PC.IsPCLike())
	assert.False(t, PC.Privileged())
	assert.True(t, Admin.Privileged())
	assert.True(t, Chair.Privileged())
	assert.True(t, Root.Privileged())
	assert.False(t, Role(0).IsPCLike())
	assert.Equal(t, "pc chair", (PC | Chair).String())
	assert.Equal(t, "none", Role(0).String())
}
