package domain

type Category string

const (
	CategoryAvailable            Category = "available"
	CategoryFlexible             Category = "flexible"
	CategoryCrossPosition        Category = "cross_position"
	CategoryOtherSite            Category = "other_site"
	CategoryUnavailableBusy      Category = "unavailable_busy"
	CategoryUnavailableHard      Category = "unavailable_hard"
	CategoryUnavailableSoft      Category = "unavailable_soft"
	CategoryUnavailablePermanent Category = "unavailable_permanent"

	// CategoryUnavailable 只用于界面默认选中的分组，包含所有 unavailable_* 分组
	CategoryUnavailable Category = "unavailable"
)

const ReasonAlreadyAssigned = "already_assigned"

type RecommendationScore struct {
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}

type RecommendedEmployee struct {
	EmpID             int64                `json:"emp_id"`
	FirstName         string               `json:"first_name"`
	LastName          string               `json:"last_name"`
	DefaultPositionID *int64               `json:"default_position_id,omitempty"`
	WorkSiteName      string               `json:"work_site_name,omitempty"`
	Recommendation    *RecommendationScore `json:"recommendation,omitempty"`
	UnavailableReason string               `json:"unavailable_reason,omitempty"`

	// 员工因为哪一个排班而不可用（仅 unavailable_* 分组中有意义）
	AssignedPositionID *int64 `json:"assigned_position_id,omitempty"`
	AssignedShiftID    *int64 `json:"assigned_shift_id,omitempty"`
	AssignedDate       string `json:"assigned_date,omitempty"`
}

func (e *RecommendedEmployee) FullName() string {
	return e.LastName + e.FirstName
}

type Recommendations struct {
	Available            []RecommendedEmployee `json:"available"`
	Flexible             []RecommendedEmployee `json:"flexible,omitempty"`
	CrossPosition        []RecommendedEmployee `json:"cross_position"`
	OtherSite            []RecommendedEmployee `json:"other_site"`
	UnavailableBusy      []RecommendedEmployee `json:"unavailable_busy"`
	UnavailableHard      []RecommendedEmployee `json:"unavailable_hard"`
	UnavailableSoft      []RecommendedEmployee `json:"unavailable_soft"`
	UnavailablePermanent []RecommendedEmployee `json:"unavailable_permanent"`
}

// List 返回指定分组的指针，方便原地修改
func (r *Recommendations) List(category Category) *[]RecommendedEmployee {
	switch category {
	case CategoryAvailable:
		return &r.Available
	case CategoryFlexible:
		return &r.Flexible
	case CategoryCrossPosition:
		return &r.CrossPosition
	case CategoryOtherSite:
		return &r.OtherSite
	case CategoryUnavailableBusy:
		return &r.UnavailableBusy
	case CategoryUnavailableHard:
		return &r.UnavailableHard
	case CategoryUnavailableSoft:
		return &r.UnavailableSoft
	case CategoryUnavailablePermanent:
		return &r.UnavailablePermanent
	}
	return nil
}

var UnavailableCategories = []Category{
	CategoryUnavailableBusy,
	CategoryUnavailableHard,
	CategoryUnavailableSoft,
	CategoryUnavailablePermanent,
}

var AllCategories = []Category{
	CategoryAvailable,
	CategoryFlexible,
	CategoryCrossPosition,
	CategoryOtherSite,
	CategoryUnavailableBusy,
	CategoryUnavailableHard,
	CategoryUnavailableSoft,
	CategoryUnavailablePermanent,
}

// Clone 深拷贝每个分组，调用方可以随意修改返回值
func (r *Recommendations) Clone() *Recommendations {
	out := &Recommendations{}
	for _, category := range AllCategories {
		src := *r.List(category)
		if src == nil {
			continue
		}
		dst := make([]RecommendedEmployee, len(src))
		copy(dst, src)
		*out.List(category) = dst
	}
	return out
}

// RecommendationRequest 对应推荐服务的一次查询
type RecommendationRequest struct {
	ScheduleID int64           `json:"schedule_id"`
	PositionID int64           `json:"position_id"`
	ShiftID    int64           `json:"shift_id"`
	Date       string          `json:"date"`
	Changes    []PendingChange `json:"changes,omitempty"`
}

func (r *RecommendationRequest) Slot() Slot {
	return Slot{PositionID: r.PositionID, Date: r.Date, ShiftID: r.ShiftID}
}
