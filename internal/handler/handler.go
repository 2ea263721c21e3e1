package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/editor"
)

// Repository 是 handler 用到的持久化操作，*repository.Repository 实现了它
type Repository interface {
	GetScheduleByID(id int64) (*domain.Schedule, error)
	GetAllSchedules() ([]*domain.Schedule, error)
	GetAllPositions() ([]*domain.Position, error)
	GetAssignmentsByWeek(weekStart string) ([]domain.Assignment, error)
	CommitAssignmentChanges(changes []domain.PendingChange) error
	CreateFlexibleShift(span *domain.SpanDetails, name string) (*domain.Shift, error)
	GetAllEmployees() ([]*domain.Employee, error)
	GetEmployeesByIDs(ids []int64) (map[int64]*domain.Employee, error)
	GetAllAvailabilityByScheduleID(scheduleID int64) ([]*domain.Availability, error)
}

// Recommender 是带缓存的推荐服务
type Recommender interface {
	editor.Recommender
	Invalidate(ctx context.Context, scheduleID int64) error
}

// ChangeValidator 是提交前的规则校验服务
type ChangeValidator interface {
	ValidateChanges(ctx context.Context, scheduleID int64, changes []domain.PendingChange) ([]domain.Violation, error)
}

// MailPublisher 由 *amqp.Channel 实现
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Repository
	translator  ut.Translator
	mailChannel MailPublisher
	recommender Recommender
	checker     ChangeValidator
	autofiller  *editor.Autofiller
	logger      *slog.Logger

	// 同一时间只有一个打开的编辑会话
	mu      sync.RWMutex
	session *editor.Session
	// DragSession 本身不是并发安全的
	dragMu sync.Mutex

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository, mailCh MailPublisher, recommender Recommender, checker ChangeValidator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	logger := slog.Default()
	autofiller := editor.NewAutofiller(recommender, editor.AutofillOptions{
		BatchSize:   cfg.Autofill.BatchSize,
		BatchDelay:  time.Duration(cfg.Autofill.BatchDelay) * time.Millisecond,
		Concurrency: cfg.Autofill.Concurrency,
	}, logger)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		recommender: recommender,
		checker:     checker,
		autofiller:  autofiller,
		logger:      logger,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/schedules", h.GetAllSchedules)

	h.Mux.Route("/session", func(r chi.Router) {
		r.Post("/", h.OpenSession)

		// 以下 API 必须在打开排班表之后才允许调用
		r.Group(func(r chi.Router) {
			r.Use(h.editSession)
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)

			r.Route("/changes", func(r chi.Router) {
				r.Get("/", h.GetPendingChanges)
				r.Post("/", h.AddPendingChanges)
				r.Delete("/{key}", h.RemovePendingChange)
			})

			r.Get("/occupancy", h.GetOccupancy)
			r.Get("/recommendations", h.GetRecommendations)

			r.Route("/drag", func(r chi.Router) {
				r.Post("/start", h.DragStart)
				r.Post("/over", h.DragOver)
				r.Post("/end", h.DragEnd)
				r.Post("/drop", h.Drop)
			})

			r.Post("/flexible-shifts", h.CreateFlexibleShift)
			r.Post("/autofill", h.Autofill)
			r.Post("/generate", h.GenerateSchedule)

			r.Route("/positions/{positionID}", func(r chi.Router) {
				r.Use(h.sessionPosition)
				r.Post("/commit", h.CommitPosition)
				r.Delete("/changes", h.CancelPosition)
			})
		})
	})
}
