package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"
)

func TestValidatePositionShiftTime(t *testing.T) {
	tests := []struct {
		name    string
		shifts  []domain.Shift
		wantErr bool
	}{
		{
			name: "adjacent shifts",
			shifts: []domain.Shift{
				{Name: "早班", StartTime: "06:00", EndTime: "14:00"},
				{Name: "中班", StartTime: "14:00", EndTime: "22:00"},
				{Name: "夜班", StartTime: "22:00:00", EndTime: "06:00:00"},
			},
		},
		{
			name: "overlapping shifts",
			shifts: []domain.Shift{
				{Name: "早班", StartTime: "06:00", EndTime: "14:00"},
				{Name: "中班", StartTime: "13:00", EndTime: "22:00"},
			},
			wantErr: true,
		},
		{
			name: "overnight overlaps next morning",
			shifts: []domain.Shift{
				{Name: "早班", StartTime: "06:00", EndTime: "14:00"},
				{Name: "夜班", StartTime: "22:00", EndTime: "07:00"},
			},
			wantErr: true,
		},
		{
			name: "flexible shift may overlap",
			shifts: []domain.Shift{
				{Name: "早班", StartTime: "06:00", EndTime: "14:00"},
				{Name: "弹性", StartTime: "06:00", EndTime: "22:00", IsFlexible: true},
			},
		},
		{
			name:    "bad format",
			shifts:  []domain.Shift{{Name: "早班", StartTime: "6点", EndTime: "14:00"}},
			wantErr: true,
		},
		{
			name:    "empty shift",
			shifts:  []domain.Shift{{Name: "早班", StartTime: "06:00", EndTime: "06:00"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidatePositionShiftTime(&domain.Position{Name: "收银", Shifts: tt.shifts})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAssignmentsWithAvailability(t *testing.T) {
	availabilities := []*domain.Availability{
		{EmpID: 10, Items: []domain.AvailabilityItem{{ShiftID: 1, Days: []int32{1, 3}}}},
	}

	ok := []domain.Assignment{{EmpID: 10, ShiftID: 1, WorkDate: "2024-01-03"}}
	require.NoError(t, utils.ValidateAssignmentsWithAvailability(ok, availabilities))

	wrongDay := []domain.Assignment{{EmpID: 10, ShiftID: 1, WorkDate: "2024-01-02"}}
	assert.Error(t, utils.ValidateAssignmentsWithAvailability(wrongDay, availabilities))

	unknown := []domain.Assignment{{EmpID: 11, ShiftID: 1, WorkDate: "2024-01-01"}}
	assert.Error(t, utils.ValidateAssignmentsWithAvailability(unknown, availabilities))
}

func TestValidIfExistsDuplicateAssignment(t *testing.T) {
	assignments := []domain.Assignment{
		{EmpID: 10, ShiftID: 1, WorkDate: "2024-01-01"},
		{EmpID: 10, ShiftID: 1, WorkDate: "2024-01-02"},
		{EmpID: 11, ShiftID: 2, WorkDate: "2024-01-01"},
	}
	require.NoError(t, utils.ValidIfExistsDuplicateAssignment(assignments))

	assignments = append(assignments, domain.Assignment{EmpID: 10, ShiftID: 2, WorkDate: "2024-01-01"})
	assert.Error(t, utils.ValidIfExistsDuplicateAssignment(assignments))
}

func TestValidateAvailabilityWithPosition(t *testing.T) {
	position := &domain.Position{Name: "收银", Shifts: []domain.Shift{{ID: 1}, {ID: 2}}}

	assert.NoError(t, utils.ValidateAvailabilityWithPosition(&domain.Availability{
		Items: []domain.AvailabilityItem{{ShiftID: 2, Days: []int32{1, 7}}},
	}, position))
	assert.Error(t, utils.ValidateAvailabilityWithPosition(&domain.Availability{
		Items: []domain.AvailabilityItem{{ShiftID: 3, Days: []int32{1}}},
	}, position))
	assert.Error(t, utils.ValidateAvailabilityWithPosition(&domain.Availability{
		Items: []domain.AvailabilityItem{{ShiftID: 1, Days: []int32{8}}},
	}, position))
}
