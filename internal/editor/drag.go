package editor

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

type DropOpKind string

const (
	DropOpAdd                 DropOpKind = "add"
	DropOpRemovePending       DropOpKind = "removePending"
	DropOpCreateFlexibleShift DropOpKind = "createFlexibleShift"
	DropOpError               DropOpKind = "error"
)

type DropOp struct {
	Kind    DropOpKind            `json:"kind"`
	Key     string                `json:"key,omitempty"`
	Change  *domain.PendingChange `json:"change,omitempty"`
	Span    *domain.SpanDetails   `json:"span,omitempty"`
	Drag    *domain.DragContext   `json:"drag,omitempty"`
	Message string                `json:"message,omitempty"`
}

// DropResult 是一次拖拽产生的操作列表，由调用方决定是否写入 store
type DropResult struct {
	Ops []DropOp `json:"ops"`
}

// Rejected 返回拒绝原因
func (r DropResult) Rejected() (string, bool) {
	for _, op := range r.Ops {
		if op.Kind == DropOpError {
			return op.Message, true
		}
	}
	return "", false
}

func (r DropResult) Empty() bool {
	return len(r.Ops) == 0
}

// FlexibleShift 返回等待确认的弹性班次请求
func (r DropResult) FlexibleShift() *DropOp {
	for i := range r.Ops {
		if r.Ops[i].Kind == DropOpCreateFlexibleShift {
			return &r.Ops[i]
		}
	}
	return nil
}

func rejected(msg string) DropResult {
	return DropResult{Ops: []DropOp{{Kind: DropOpError, Message: msg}}}
}

// ShiftLookup 返回岗位下的所有班次
type ShiftLookup func(positionID int64) []domain.Shift

// Builder 把一次完成的拖拽翻译成待提交修改，本身不持有也不修改 store
type Builder struct {
	shifts        ShiftLookup
	allowFlexible bool
	newKey        func(action domain.ChangeAction, empID int64, slot domain.Slot) string
}

// allowFlexible 表示是否配置了弹性班次的创建服务，没有配置时跨班次拖拽按普通移动处理
func NewBuilder(shifts ShiftLookup, allowFlexible bool) *Builder {
	return &Builder{
		shifts:        shifts,
		allowFlexible: allowFlexible,
		newKey:        uniqueKey,
	}
}

func (b *Builder) Build(
	drag domain.DragContext,
	target domain.Slot,
	targetEmp *domain.CellEmployee,
	committed []domain.Assignment,
	pending []domain.PendingChange,
) DropResult {
	from := drag.FromCell

	// 拖回原来的格子
	if from == target {
		return DropResult{}
	}

	// 界面上的格子可能已经过期，员工的来源以当前状态为准
	dragged, err := LocateEmployee(drag.Employee, from, committed, pending)
	if err != nil {
		return rejected(err.Error())
	}
	drag.Employee = dragged

	if targetEmp != nil && targetEmp.EmpID != dragged.EmpID {
		located, err := LocateEmployee(*targetEmp, target, committed, pending)
		if err != nil {
			return rejected(err.Error())
		}
		targetEmp = &located
	}

	if targetEmp == nil && b.allowFlexible && b.shifts != nil && DetectSpanningAttempt(&from, &target) {
		if details := CalculateSpanningDetails(from, target, b.shifts(target.PositionID)); details != nil {
			dragCopy := drag
			return DropResult{Ops: []DropOp{{
				Kind: DropOpCreateFlexibleShift,
				Span: details,
				Drag: &dragCopy,
			}}}
		}
	}

	if targetEmp != nil && targetEmp.EmpID != drag.Employee.EmpID {
		return b.swap(drag, target, *targetEmp, committed, pending)
	}

	return b.move(drag, target, committed, pending)
}

func (b *Builder) swap(
	drag domain.DragContext,
	target domain.Slot,
	targetEmp domain.CellEmployee,
	committed []domain.Assignment,
	pending []domain.PendingChange,
) DropResult {
	from := drag.FromCell
	dragged := drag.Employee

	if err := CheckForDuplicateOnSwap(dragged, from, targetEmp, target, committed, pending); err != nil {
		return rejected(err.Error())
	}

	ops := make([]DropOp, 0, 4)
	ops = append(ops, b.leave(dragged, from))
	ops = append(ops, b.leave(targetEmp, target))
	ops = append(ops, b.join(dragged, target))
	ops = append(ops, b.join(targetEmp, from))

	return DropResult{Ops: ops}
}

func (b *Builder) move(
	drag domain.DragContext,
	target domain.Slot,
	committed []domain.Assignment,
	pending []domain.PendingChange,
) DropResult {
	from := drag.FromCell
	dragged := drag.Employee

	overlay := pending
	if !dragged.IsPending {
		overlay = WithHypothetical(pending, hypotheticalRemove(dragged.EmpID, from))
	}

	if ContainsEmployee(dragged.EmpID, target, committed, overlay) {
		return rejected(ErrDuplicateAssignment.Error())
	}

	return DropResult{Ops: []DropOp{
		b.leave(dragged, from),
		b.join(dragged, target),
	}}
}

// CheckForDuplicateOnSwap 假设双方都已离开原来的格子，检查交换后是否会有人在目标格子中重复出现
func CheckForDuplicateOnSwap(
	dragged domain.CellEmployee,
	from domain.Slot,
	targetEmp domain.CellEmployee,
	target domain.Slot,
	committed []domain.Assignment,
	pending []domain.PendingChange,
) error {
	overlay := WithHypothetical(pending,
		hypotheticalRemove(dragged.EmpID, from),
		hypotheticalRemove(targetEmp.EmpID, target),
	)

	if ContainsEmployee(dragged.EmpID, target, committed, overlay) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssignment, displayName(dragged))
	}
	if ContainsEmployee(targetEmp.EmpID, from, committed, overlay) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssignment, displayName(targetEmp))
	}
	return nil
}

// leave 让员工离开格子。如果员工在该格子中本来就只是一条待提交的修改，
// 直接删除那条修改，而不是再追加一条 remove
func (b *Builder) leave(emp domain.CellEmployee, slot domain.Slot) DropOp {
	if emp.IsPending && emp.PendingKey != "" {
		return DropOp{Kind: DropOpRemovePending, Key: emp.PendingKey}
	}

	key := b.newKey(domain.ActionRemove, emp.EmpID, slot)
	return DropOp{
		Kind: DropOpAdd,
		Key:  key,
		Change: &domain.PendingChange{
			Key:          key,
			Action:       domain.ActionRemove,
			PositionID:   slot.PositionID,
			Date:         slot.Date,
			ShiftID:      slot.ShiftID,
			EmpID:        emp.EmpID,
			EmpName:      emp.Name,
			AssignmentID: emp.AssignmentID,
		},
	}
}

func (b *Builder) join(emp domain.CellEmployee, slot domain.Slot) DropOp {
	key := b.newKey(domain.ActionAssign, emp.EmpID, slot)
	return DropOp{
		Kind: DropOpAdd,
		Key:  key,
		Change: &domain.PendingChange{
			Key:        key,
			Action:     domain.ActionAssign,
			PositionID: slot.PositionID,
			Date:       slot.Date,
			ShiftID:    slot.ShiftID,
			EmpID:      emp.EmpID,
			EmpName:    emp.Name,
		},
	}
}

func displayName(emp domain.CellEmployee) string {
	if emp.Name != "" {
		return emp.Name
	}
	return fmt.Sprintf("#%d", emp.EmpID)
}

type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragSpanningPreview
	DragDropped
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragSpanningPreview:
		return "spanning_preview"
	case DragDropped:
		return "dropped"
	}
	return "unknown"
}

// DragSession 是单次拖拽手势的状态机: Idle -> Dragging (-> SpanningPreview) -> Idle | Dropped
type DragSession struct {
	builder *Builder
	state   DragState
	ctx     *domain.DragContext
	preview *domain.SpanDetails
}

func NewDragSession(builder *Builder) *DragSession {
	return &DragSession{builder: builder}
}

func (d *DragSession) State() DragState {
	return d.state
}

func (d *DragSession) Context() *domain.DragContext {
	return d.ctx
}

func (d *DragSession) Start(ctx domain.DragContext) {
	d.ctx = &ctx
	d.preview = nil
	d.state = DragDragging
}

// Over 在拖过某个格子时调用，检测到可以跨班次时返回预览，不会产生任何修改
func (d *DragSession) Over(target domain.Slot, occupied bool) *domain.SpanDetails {
	if d.ctx == nil {
		return nil
	}

	d.preview = nil
	d.state = DragDragging

	b := d.builder
	if occupied || !b.allowFlexible || b.shifts == nil {
		return nil
	}
	if !DetectSpanningAttempt(&d.ctx.FromCell, &target) {
		return nil
	}

	d.preview = CalculateSpanningDetails(d.ctx.FromCell, target, b.shifts(target.PositionID))
	if d.preview != nil {
		d.state = DragSpanningPreview
	}
	return d.preview
}

// End 在没有放下的情况下结束拖拽，丢弃上下文
func (d *DragSession) End() {
	d.ctx = nil
	d.preview = nil
	d.state = DragIdle
}

func (d *DragSession) Drop(
	target domain.Slot,
	targetEmp *domain.CellEmployee,
	committed []domain.Assignment,
	pending []domain.PendingChange,
) (DropResult, error) {
	if d.ctx == nil {
		return DropResult{}, ErrNotDragging
	}

	result := d.builder.Build(*d.ctx, target, targetEmp, committed, pending)

	d.ctx = nil
	d.preview = nil
	d.state = DragDropped
	return result, nil
}
