package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeScheduleChanged = "schedule_changed"

type ScheduleChangedItem struct {
	Action    string `json:"action"`
	Position  string `json:"position"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ScheduleChangedMailData struct {
	FullName     string                `json:"fullName"`
	ScheduleName string                `json:"scheduleName"`
	Items        []ScheduleChangedItem `json:"items"`
}
