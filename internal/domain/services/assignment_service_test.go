package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewing-love-service/internal/domain/models"
)

type assignmentFixture struct {
	assignments *AssignmentService
	events      *recordingEvents
	device      *models.Device
	elder       *models.FamilyMember
	son         *models.FamilyMember
}

func newAssignmentFixture(t *testing.T) assignmentFixture {
	db := newTestDB(t)
	events := &recordingEvents{}
	members := NewFamilyMemberService(db, testConfig(), nil)
	devices := NewDeviceService(db, testConfig(), nil, nil)

	d, err := devices.CreateDevice(ctxBg, DeviceInput{Name: "Band A", Status: models.DeviceStatusOnline})
	require.NoError(t, err)

	return assignmentFixture{
		assignments: NewAssignmentService(db, testConfig(), NewMemoryCacheService(), events).(*AssignmentService),
		events:      events,
		device:      d,
		elder:       mustCreateMember(t, members, "Grandma Rose", "Elder"),
		son:         mustCreateMember(t, members, "Liam", "Son"),
	}
}

func TestCreateAssignmentLoadsRelations(t *testing.T) {
	f := newAssignmentFixture(t)

	a, err := f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: f.device.ID, FamilyMemberID: f.elder.ID})
	require.NoError(t, err)
	require.NotNil(t, a.Device)
	require.NotNil(t, a.FamilyMember)
	assert.Equal(t, "Band A", a.Device.Name)
	assert.Equal(t, models.DeviceStatusOnline, a.Device.Status)
	assert.Equal(t, "Grandma Rose", a.FamilyMember.Name)
	assert.Equal(t, "Elder", a.FamilyMember.Relationship)

	published := f.events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, TopicAssignment, published[0].Topic)
	assert.Equal(t, "assigned", published[0].Type)
	assert.Equal(t, a.ID, published[0].Payload["assignment_id"])
}

func TestGetAllAssignmentsNewestFirst(t *testing.T) {
	f := newAssignmentFixture(t)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	_, err := f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: f.device.ID, FamilyMemberID: f.elder.ID, AssignedAt: &first})
	require.NoError(t, err)
	// 同一设备可以分配给多个成员
	_, err = f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: f.device.ID, FamilyMemberID: f.son.ID, AssignedAt: &second})
	require.NoError(t, err)

	all, err := f.assignments.GetAllAssignments(ctxBg)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Liam", all[0].FamilyMember.Name)
	assert.Equal(t, "Grandma Rose", all[1].FamilyMember.Name)
}

func TestCreateAssignmentValidation(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.assignments.CreateAssignment(ctxBg, AssignmentInput{FamilyMemberID: f.elder.ID})
	assert.ErrorIs(t, err, ErrAssignmentValidation)
	assert.EqualError(t, err, "Please select both a device and a family member")

	_, err = f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: "missing", FamilyMemberID: f.elder.ID})
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: f.device.ID, FamilyMemberID: "missing"})
	assert.ErrorIs(t, err, ErrFamilyMemberNotFound)

	assert.Empty(t, f.events.Events())
}

func TestDeleteAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	a, err := f.assignments.CreateAssignment(ctxBg, AssignmentInput{DeviceID: f.device.ID, FamilyMemberID: f.elder.ID})
	require.NoError(t, err)

	require.NoError(t, f.assignments.DeleteAssignment(ctxBg, a.ID))
	_, err = f.assignments.GetAssignmentByID(ctxBg, a.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
	assert.ErrorIs(t, f.assignments.DeleteAssignment(ctxBg, a.ID), ErrAssignmentNotFound)

	published := f.events.Events()
	require.Len(t, published, 2)
	assert.Equal(t, "unassigned", published[1].Type)
}
