package domain

// CellEmployee 是格子中显示的一名员工，可能来自已提交的排班，也可能来自待提交的修改
type CellEmployee struct {
	EmpID        int64  `json:"empId" validate:"required,gt=0"`
	Name         string `json:"name"`
	AssignmentID *int64 `json:"assignmentId,omitempty"`
	IsPending    bool   `json:"isPending"`
	PendingKey   string `json:"pendingKey,omitempty"`
}

// DragContext 只在一次拖拽手势中存在
type DragContext struct {
	Employee CellEmployee `json:"employee" validate:"required"`
	FromCell Slot         `json:"fromCell" validate:"required"`
}
