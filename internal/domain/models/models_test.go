package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsElderRelationship(t *testing.T) {
	for _, r := range []string{"elder", "Elderly", " Older Adult ", "ELDER"} {
		assert.True(t, IsElderRelationship(r), r)
	}
	for _, r := range []string{"", "son", "grandmother", "older"} {
		assert.False(t, IsElderRelationship(r), r)
	}
	assert.True(t, FamilyMember{Relationship: "elderly"}.IsElder())
}

func TestDeviceStatusToggled(t *testing.T) {
	assert.Equal(t, DeviceStatusOffline, DeviceStatusOnline.Toggled())
	assert.Equal(t, DeviceStatusOnline, DeviceStatusOffline.Toggled())
	assert.Equal(t, DeviceStatusOnline, DeviceStatusOnline.Toggled().Toggled())
	assert.False(t, DeviceStatus("fault").Valid())
}

func TestBaseModelBeforeCreate(t *testing.T) {
	m := &BaseModel{}
	assert.NoError(t, m.BeforeCreate(nil))
	assert.Len(t, m.ID, 36)

	kept := &BaseModel{ID: "fixed"}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
}
