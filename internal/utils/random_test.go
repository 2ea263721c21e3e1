package utils_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"
)

func TestGenerateRandomPositionIsValid(t *testing.T) {
	for range 20 {
		position := utils.GenerateRandomPosition()
		require.NoError(t, utils.ValidatePositionShiftTime(position))

		for _, shift := range position.Shifts {
			for day := int32(1); day <= 7; day++ {
				assert.GreaterOrEqual(t, position.Requirements.Required(shift.ID, day), int32(0))
			}
		}
	}
}

func TestGenerateRandomEmployee(t *testing.T) {
	employee := utils.GenerateRandomEmployee("example.com", []int64{3})

	assert.Regexp(t, regexp.MustCompile(`^[a-z]+[0-9]{2,4}$`), employee.Code)
	assert.Equal(t, employee.Code+"@example.com", employee.Email)
	require.NotNil(t, employee.DefaultPositionID)
	assert.Equal(t, int64(3), *employee.DefaultPositionID)
	assert.NotEmpty(t, employee.FullName())
}

func TestGenerateRandomAvailabilityMatchesPosition(t *testing.T) {
	position := utils.GenerateRandomPosition()
	availability := utils.GenerateRandomAvailability(1, position, &domain.Employee{ID: 10})

	assert.Equal(t, int64(10), availability.EmpID)
	assert.NoError(t, utils.ValidateAvailabilityWithPosition(availability, position))
}

func TestMondayOf(t *testing.T) {
	tests := map[string]string{
		"2024-01-01": "2024-01-01",
		"2024-01-03": "2024-01-01",
		"2024-01-07": "2024-01-01",
		"2024-01-08": "2024-01-08",
	}

	for in, want := range tests {
		day, err := time.Parse(domain.DateLayout, in)
		require.NoError(t, err)
		assert.Equal(t, want, utils.MondayOf(day), in)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "张三", utils.NormalizeName(" 张 三 "))
}
