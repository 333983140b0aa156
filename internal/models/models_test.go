package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCampgroundEditableBy(t *testing.T) {
	owner := NewUser("bert", "bert@example.com", "hash")
	other := NewUser("ernie", "ernie@example.com", "hash")
	admin := NewUser("root", "root@example.com", "hash")
	admin.IsAdmin = true

	cg := NewCampground("Salmon Creek", "", "Big Sur", 9.50, "http://img", "img-1", owner.Snapshot())

	t.Run("owner may edit", func(t *testing.T) {
		assert.True(t, cg.EditableBy(owner))
	})
	t.Run("admin may edit", func(t *testing.T) {
		assert.True(t, cg.EditableBy(admin))
	})
	t.Run("other user may not edit", func(t *testing.T) {
		assert.False(t, cg.EditableBy(other))
	})
	t.Run("anonymous may not edit", func(t *testing.T) {
		assert.False(t, cg.EditableBy(nil))
	})
}

func TestCommentEditableBy(t *testing.T) {
	owner := NewUser("bert", "bert@example.com", "hash")
	other := NewUser("ernie", "ernie@example.com", "hash")
	admin := NewUser("root", "root@example.com", "hash")
	admin.IsAdmin = true

	cm := NewComment(uuid.New(), "lovely spot", owner.Snapshot())

	assert.True(t, cm.EditableBy(owner))
	assert.True(t, cm.EditableBy(admin))
	assert.False(t, cm.EditableBy(other))
	assert.False(t, cm.EditableBy(nil))
}

func TestSnapshotCarriesIdentity(t *testing.T) {
	u := NewUser("bert", "bert@example.com", "hash")
	a := u.Snapshot()
	assert.Equal(t, u.ID, a.ID)
	assert.Equal(t, "bert", a.Username)
}
