package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextWaitlistStatus(t *testing.T) {
	next, ok := NextWaitlistStatus(WaitlistStatusPending)
	assert.True(t, ok)
	assert.Equal(t, WaitlistStatusInvited, next)

	next, ok = NextWaitlistStatus(WaitlistStatusInvited)
	assert.True(t, ok)
	assert.Equal(t, WaitlistStatusJoined, next)

	_, ok = NextWaitlistStatus(WaitlistStatusJoined)
	assert.False(t, ok, "joined is terminal")

	_, ok = NextWaitlistStatus("archived")
	assert.False(t, ok)
}

func TestIsValidWaitlistStatus(t *testing.T) {
	assert.True(t, IsValidWaitlistStatus("invited"))
	assert.False(t, IsValidWaitlistStatus("Invited"))
	assert.False(t, IsValidWaitlistStatus(""))
}

func TestArticleTags(t *testing.T) {
	a := &Article{}
	assert.Empty(t, a.TagList())

	a.SetTagList([]string{"ai", "dental"})
	assert.Equal(t, ",ai,dental,", a.Tags)
	assert.Equal(t, []string{"ai", "dental"}, a.TagList())

	a.SetTagList(nil)
	assert.Equal(t, "", a.Tags)
}
