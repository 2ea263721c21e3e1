package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

var actionLabels = map[domain.ChangeAction]string{
	domain.ActionAssign: "新增",
	domain.ActionRemove: "取消",
}

func (h *Handler) publishMail(mailMessage domain.MailMessage) error {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

// notifyScheduleChanged 给每个受影响的员工发一封邮件。排班已经提交成功，发送失败只记录日志
func (h *Handler) notifyScheduleChanged(schedule domain.Schedule, position domain.Position, changes []domain.PendingChange) {
	if h.mailChannel == nil {
		return
	}

	empIDs := make([]int64, 0)
	items := make(map[int64][]domain.ScheduleChangedItem)
	for _, change := range changes {
		item := domain.ScheduleChangedItem{
			Action:   actionLabels[change.Action],
			Position: position.Name,
			Date:     change.Date,
		}
		if shift := position.FindShift(change.ShiftID); shift != nil {
			item.StartTime, item.EndTime = shift.StartTime, shift.EndTime
		}
		if change.CustomStartTime != nil && change.CustomEndTime != nil {
			item.StartTime, item.EndTime = *change.CustomStartTime, *change.CustomEndTime
		}

		if _, exists := items[change.EmpID]; !exists {
			empIDs = append(empIDs, change.EmpID)
		}
		items[change.EmpID] = append(items[change.EmpID], item)
	}

	employees, err := h.repository.GetEmployeesByIDs(empIDs)
	if err != nil {
		h.logger.Error("获取员工信息失败，无法发送排班变更通知", "error", err)
		return
	}

	for _, empID := range empIDs {
		employee, exists := employees[empID]
		if !exists || employee.Email == "" {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: domain.MailTypeScheduleChanged,
			To:   employee.Email,
			Data: domain.ScheduleChangedMailData{
				FullName:     employee.FullName(),
				ScheduleName: schedule.Name,
				Items:        items[empID],
			},
		}
		if err := h.publishMail(mailMessage); err != nil {
			h.logger.Error("无法发送排班变更通知", "emp_id", empID, "error", err)
		}
	}
}
