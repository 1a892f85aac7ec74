package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewing-love-service/internal/domain/models"
)

func newDeviceService(t *testing.T) (*DeviceService, *recordingEvents) {
	events := &recordingEvents{}
	svc := NewDeviceService(newTestDB(t), testConfig(), NewMemoryCacheService(), events).(*DeviceService)
	return svc, events
}

func TestCreateDeviceDefaults(t *testing.T) {
	svc, _ := newDeviceService(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	d, err := svc.CreateDevice(ctxBg, DeviceInput{Name: "Band A"})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOffline, d.Status)
	assert.True(t, d.BindingTime.Equal(now))

	bound := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	d2, err := svc.CreateDevice(ctxBg, DeviceInput{Name: "Band B", Status: models.DeviceStatusOnline, BindingTime: &bound})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOnline, d2.Status)
	assert.True(t, d2.BindingTime.Equal(bound))

	_, err = svc.CreateDevice(ctxBg, DeviceInput{Name: "Band C", Status: "fault"})
	assert.ErrorIs(t, err, ErrInvalidDeviceStatus)

	all, err := svc.GetAllDevices(ctxBg)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Band A", all[0].Name)
}

func TestToggleDeviceStatus(t *testing.T) {
	svc, events := newDeviceService(t)
	d, err := svc.CreateDevice(ctxBg, DeviceInput{Name: "Band A"})
	require.NoError(t, err)

	toggled, err := svc.ToggleDeviceStatus(ctxBg, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOnline, toggled.Status)

	again, err := svc.ToggleDeviceStatus(ctxBg, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOffline, again.Status)

	stored, err := svc.GetDeviceByID(ctxBg, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOffline, stored.Status)

	published := events.Events()
	require.Len(t, published, 2)
	assert.Equal(t, TopicDeviceStatus, published[0].Topic)
	assert.Equal(t, "device_status", published[0].Type)
	assert.Equal(t, models.DeviceStatusOnline, published[0].Payload["status"])

	_, err = svc.ToggleDeviceStatus(ctxBg, "missing")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestUpdateDevice(t *testing.T) {
	svc, events := newDeviceService(t)
	d, err := svc.CreateDevice(ctxBg, DeviceInput{Name: "Band A"})
	require.NoError(t, err)

	name := "Kitchen band"
	updated, err := svc.UpdateDevice(ctxBg, d.ID, DeviceUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen band", updated.Name)
	assert.Empty(t, events.Events(), "renaming does not publish a status event")

	online := models.DeviceStatusOnline
	updated, err = svc.UpdateDevice(ctxBg, d.ID, DeviceUpdate{Status: &online})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOnline, updated.Status)
	assert.Len(t, events.Events(), 1)

	bad := models.DeviceStatus("sleeping")
	_, err = svc.UpdateDevice(ctxBg, d.ID, DeviceUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidDeviceStatus)

	_, err = svc.UpdateDevice(ctxBg, "missing", DeviceUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeleteDeviceCascadesAssignments(t *testing.T) {
	db := newTestDB(t)
	devices := NewDeviceService(db, testConfig(), nil, nil)
	members := NewFamilyMemberService(db, testConfig(), nil)
	assignments := NewAssignmentService(db, testConfig(), nil, nil)

	m := mustCreateMember(t, members, "Grandma Rose", "Elder")
	d, err := devices.CreateDevice(ctxBg, DeviceInput{Name: "Band A"})
	require.NoError(t, err)
	_, err = assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: d.ID, FamilyMemberID: m.ID})
	require.NoError(t, err)

	require.NoError(t, devices.DeleteDevice(ctxBg, d.ID))

	all, err := assignments.GetAllAssignments(ctxBg)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, devices.DeleteDevice(ctxBg, d.ID), ErrDeviceNotFound)
}
