package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPatch_Apply(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Role: RoleUser, Permissions: map[string]bool{"services": true}}

	admin := RoleAdmin
	done := true
	UserPatch{Role: &admin, SetupCompleted: &done}.Apply(u)

	assert.Equal(t, RoleAdmin, u.Role)
	assert.True(t, u.SetupCompleted)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.Permissions["services"])
}

func TestUserPatch_ApplyNil(t *testing.T) {
	name := "bob"
	assert.NotPanics(t, func() { UserPatch{Username: &name}.Apply(nil) })
}

func TestPatchFromUser(t *testing.T) {
	login := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	server := User{ID: 99, Username: "alice2", Email: "a@example.com", Role: RoleAdmin, LastLogin: &login}

	u := &User{ID: 1, Username: "alice", Permissions: map[string]bool{"old": true}}
	PatchFromUser(server).Apply(u)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice2", u.Username)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.Empty(t, u.Permissions)
	require.NotNil(t, u.LastLogin)
	assert.True(t, login.Equal(*u.LastLogin))
}

func TestUser_Clone(t *testing.T) {
	login := time.Now()
	u := &User{ID: 1, Permissions: map[string]bool{"webhooks": true}, LastLogin: &login}
	clone := u.Clone()

	clone.Permissions["webhooks"] = false
	assert.True(t, u.Permissions["webhooks"])
	assert.NotSame(t, u.LastLogin, clone.LastLogin)

	var nilUser *User
	assert.Nil(t, nilUser.Clone())
}

func TestUser_CloneNormalizesLastLogin(t *testing.T) {
	local := time.Date(2026, 9, 1, 11, 30, 0, 500, time.FixedZone("MSK", 3*60*60))
	now := time.Now()

	clone := (&User{ID: 1, LastLogin: &local}).Clone()
	require.NotNil(t, clone.LastLogin)
	assert.Equal(t, time.Date(2026, 9, 1, 8, 30, 0, 500, time.UTC), *clone.LastLogin)

	clone = (&User{ID: 1, LastLogin: &now}).Clone()
	assert.True(t, now.Equal(*clone.LastLogin))
	assert.Equal(t, time.UTC, clone.LastLogin.Location())
	assert.Equal(t, now.Round(0).UTC(), *clone.LastLogin)
}

func TestUser_Helpers(t *testing.T) {
	var nilUser *User
	assert.True(t, nilUser.IsEmpty())
	assert.True(t, (&User{}).IsEmpty())
	assert.False(t, (&User{Username: "alice"}).IsEmpty())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, Role("root").Valid())
}
