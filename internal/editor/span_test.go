package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

var spanShifts = []domain.Shift{
	{ID: 1, PositionID: 1, Name: "早班", StartTime: "06:00", EndTime: "14:00"},
	{ID: 2, PositionID: 1, Name: "中班", StartTime: "14:00", EndTime: "22:00"},
	{ID: 3, PositionID: 1, Name: "夜班", StartTime: "22:00:00", EndTime: "06:00:00"},
	{ID: 4, PositionID: 1, Name: "弹性", StartTime: "08:00", EndTime: "18:00", IsFlexible: true},
}

func TestDetectSpanningAttempt(t *testing.T) {
	tests := []struct {
		name string
		from *domain.Slot
		to   *domain.Slot
		want bool
	}{
		{"missing from", nil, ptr(slot(1, "2024-01-01", 2)), false},
		{"missing to", ptr(slot(1, "2024-01-01", 1)), nil, false},
		{"same cell", ptr(slot(1, "2024-01-01", 1)), ptr(slot(1, "2024-01-01", 1)), false},
		{"different position", ptr(slot(1, "2024-01-01", 1)), ptr(slot(2, "2024-01-01", 2)), false},
		{"same day", ptr(slot(1, "2024-01-01", 1)), ptr(slot(1, "2024-01-01", 2)), true},
		{"next day", ptr(slot(1, "2024-01-01", 3)), ptr(slot(1, "2024-01-02", 1)), true},
		{"previous day", ptr(slot(1, "2024-01-02", 1)), ptr(slot(1, "2024-01-01", 3)), true},
		{"same shift next day", ptr(slot(1, "2024-01-01", 1)), ptr(slot(1, "2024-01-02", 1)), true},
		{"two days apart", ptr(slot(1, "2024-01-01", 1)), ptr(slot(1, "2024-01-03", 2)), false},
		{"across month end", ptr(slot(1, "2024-01-31", 3)), ptr(slot(1, "2024-02-01", 1)), true},
		{"bad date", ptr(slot(1, "2024-01-01", 1)), ptr(slot(1, "oops", 2)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, editor.DetectSpanningAttempt(tt.from, tt.to))
		})
	}
}

func TestCalculateSpanningDetails_SameDay(t *testing.T) {
	details := editor.CalculateSpanningDetails(slot(1, "2024-01-01", 1), slot(1, "2024-01-01", 2), spanShifts)

	require.NotNil(t, details)
	assert.Equal(t, "06:00", details.StartTime)
	assert.Equal(t, "22:00", details.EndTime)
	assert.False(t, details.IsOvernight)
	assert.False(t, details.IsCrossDay)
	assert.Equal(t, "2024-01-01", details.Date)
	assert.Nil(t, details.EndDate)
	assert.Equal(t, [2]int64{1, 2}, details.SpanningShifts)
	assert.Contains(t, details.SuggestedName, "06:00")
	assert.Contains(t, details.SuggestedName, "22:00")
}

func TestCalculateSpanningDetails_SameDayReverseDrag(t *testing.T) {
	details := editor.CalculateSpanningDetails(slot(1, "2024-01-01", 2), slot(1, "2024-01-01", 1), spanShifts)

	require.NotNil(t, details)
	assert.Equal(t, "06:00", details.StartTime)
	assert.Equal(t, "22:00", details.EndTime)
	// 保持拖拽方向，源班次在前
	assert.Equal(t, [2]int64{2, 1}, details.SpanningShifts)
}

func TestCalculateSpanningDetails_CrossDay(t *testing.T) {
	// 从第二天的早班拖回前一天的夜班，时间方向仍按日期先后
	details := editor.CalculateSpanningDetails(slot(1, "2024-01-02", 1), slot(1, "2024-01-01", 3), spanShifts)

	require.NotNil(t, details)
	assert.Equal(t, "22:00", details.StartTime)
	assert.Equal(t, "14:00", details.EndTime)
	assert.True(t, details.IsCrossDay)
	assert.True(t, details.IsOvernight)
	assert.Equal(t, "2024-01-01", details.Date)
	require.NotNil(t, details.EndDate)
	assert.Equal(t, "2024-01-02", *details.EndDate)
	assert.Equal(t, [2]int64{1, 3}, details.SpanningShifts)

	sameDay := editor.CalculateSpanningDetails(slot(1, "2024-01-01", 1), slot(1, "2024-01-01", 2), spanShifts)
	assert.NotEqual(t, sameDay.SuggestedName[:6], details.SuggestedName[:6])
}

func TestCalculateSpanningDetails_OvernightSameDay(t *testing.T) {
	// 06:00-14:00 与 22:00-06:00: 最早开始 06:00，最晚结束 14:00
	details := editor.CalculateSpanningDetails(slot(1, "2024-01-01", 3), slot(1, "2024-01-01", 1), spanShifts)

	require.NotNil(t, details)
	assert.Equal(t, "06:00", details.StartTime)
	assert.Equal(t, "14:00", details.EndTime)
	assert.False(t, details.IsOvernight)
}

func TestCalculateSpanningDetails_Invalid(t *testing.T) {
	assert.Nil(t, editor.CalculateSpanningDetails(slot(1, "2024-01-01", 1), slot(1, "2024-01-01", 99), spanShifts))
	assert.Nil(t, editor.CalculateSpanningDetails(slot(1, "2024-01-01", 1), slot(1, "2024-01-01", 4), spanShifts))
	assert.Nil(t, editor.CalculateSpanningDetails(slot(1, "2024-01-01", 1), slot(1, "2024-01-03", 2), spanShifts))
}
