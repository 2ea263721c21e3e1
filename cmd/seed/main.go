package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/repository"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/seed"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var scheduleID int64
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机岗位, 2: 插入随机员工, 3: 插入本周排班表, 4: 插入随机空闲时间, 5: 导入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&scheduleID, "schedule-id", 0, "空闲时间所属的排班表 ID")
	flag.StringVar(&csvPath, "csv", "", "真实数据的 CSV 路径，默认使用配置中的路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的岗位数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			position := utils.GenerateRandomPosition()
			if err := utils.ValidatePositionShiftTime(position); err != nil {
				slog.Error("随机岗位的班次时间不合法", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreatePosition(position); err != nil {
				slog.Error("无法插入岗位", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入岗位成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		positions, err := repo.GetAllPositions()
		if err != nil {
			slog.Error("无法获取所有岗位", slog.String("error", err.Error()))
			return
		}
		positionIDs := make([]int64, 0, len(positions))
		for _, position := range positions {
			positionIDs = append(positionIDs, position.ID)
		}

		cnt := 0
		for i := 0; i < n; i++ {
			employee := utils.GenerateRandomEmployee(cfg.Seed.EmailDomain, positionIDs)

			exists, err := repo.CheckEmployeeCodeIfExists(employee.Code)
			if err != nil {
				slog.Error("无法检查工号", slog.String("error", err.Error()))
				continue
			}
			if exists {
				slog.Warn("工号已存在，跳过", slog.String("code", employee.Code))
				continue
			}

			if err := repo.CreateEmployee(employee); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 3:
		weekStart := utils.MondayOf(time.Now())
		schedule := &domain.Schedule{
			Name:        weekStart + " 排班表",
			Description: "由 seed 生成",
			WeekStart:   weekStart,
		}
		if err := repo.CreateSchedule(schedule); err != nil {
			slog.Error("无法插入排班表", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入排班表成功", slog.Int64("id", schedule.ID), slog.String("week_start", weekStart))
	case 4:
		if scheduleID <= 0 {
			slog.Error("请输入合法的排班表 ID")
			return
		}

		if _, err := repo.GetScheduleByID(scheduleID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的排班表不存在", slog.Int64("schedule_id", scheduleID))
			default:
				slog.Error("无法获取排班表", slog.String("error", err.Error()))
			}
			return
		}

		positions, err := repo.GetAllPositions()
		if err != nil {
			slog.Error("无法获取所有岗位", slog.String("error", err.Error()))
			return
		}
		positionByID := make(map[int64]*domain.Position, len(positions))
		for _, position := range positions {
			positionByID[position.ID] = position
		}

		employees, err := repo.GetAllEmployees()
		if err != nil {
			slog.Error("无法获取所有员工", slog.String("error", err.Error()))
			return
		}

		// 每个员工只在自己的默认岗位上提交空闲时间
		cnt := 0
		for _, employee := range employees {
			if employee.DefaultPositionID == nil {
				continue
			}
			position, exists := positionByID[*employee.DefaultPositionID]
			if !exists {
				continue
			}

			availability := utils.GenerateRandomAvailability(scheduleID, position, employee)
			if err := repo.InsertAvailability(availability); err != nil {
				slog.Error("无法插入空闲时间", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入空闲时间成功", slog.Int("count", cnt))
	case 5:
		if scheduleID <= 0 {
			slog.Error("请输入合法的排班表 ID")
			return
		}
		if csvPath == "" {
			csvPath = cfg.Seed.CSVPath
		}

		if err := seed.ImportCSV(repo, csvPath, scheduleID); err != nil {
			slog.Error("导入真实数据失败", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
