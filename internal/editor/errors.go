package editor

import "errors"

var (
	ErrMalformedChange     = errors.New("待提交修改的格式不正确")
	ErrNoSchedule          = errors.New("当前没有打开的排班表")
	ErrInvalidSlot         = errors.New("无效的排班格子")
	ErrDuplicateAssignment = errors.New("员工已被分配到该班次")
	ErrRejectedDrop        = errors.New("拖拽操作已被拒绝")
	ErrNotDragging         = errors.New("当前没有正在进行的拖拽")
	ErrUnknownPosition     = errors.New("岗位不存在")
	ErrNotInCell           = errors.New("员工不在该格子中")
)
