package scheduler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/utils"
)

type Scheduler struct {
	parameters     *Parameters
	weekStart      string
	position       *domain.Position
	employees      []*domain.Employee          // 注意这个不是所有的员工，而是提交了空闲时间的员工
	availabilities []*domain.Availability      // 仅做最后的校验使用
	availableMap   map[int64]map[int32][]int64 // {shiftID: {day: [empID1, empID2, ...]}}
	busy           map[string]map[int64]bool   // {date: {empID: true}}，当天已经在别处上班的员工
	rand           *rand.Rand
}

// New 创建一个只负责单个岗位的调度器。busy 是调用方根据已有排班和待提交修改算出来的，
// 这些员工在对应日期不会被选中
func New(
	parameters *Parameters,
	weekStart string,
	position *domain.Position,
	employees []*domain.Employee,
	availabilities []*domain.Availability,
	busy map[string]map[int64]bool,
) (*Scheduler, error) {
	if parameters.PopulationSize <= 0 || parameters.EliteCount < 0 || parameters.EliteCount > parameters.PopulationSize {
		return nil, errors.New("遗传算法参数不合法")
	}
	if _, err := domain.ParseDate(weekStart); err != nil {
		return nil, fmt.Errorf("周起始日期格式错误: %w", err)
	}

	seed := parameters.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Scheduler{
		parameters:     parameters,
		weekStart:      weekStart,
		position:       position,
		employees:      make([]*domain.Employee, 0),
		availabilities: availabilities,
		availableMap:   make(map[int64]map[int32][]int64),
		busy:           busy,
		rand:           rand.New(rand.NewSource(seed)),
	}
	if s.busy == nil {
		s.busy = make(map[string]map[int64]bool)
	}

	for _, availability := range availabilities {
		empID := availability.EmpID

		for _, item := range availability.Items {
			shiftID := item.ShiftID

			if _, exists := s.availableMap[shiftID]; !exists {
				s.availableMap[shiftID] = map[int32][]int64{}
			}

			for _, day := range item.Days {
				s.availableMap[shiftID][day] = append(s.availableMap[shiftID][day], empID)
			}
		}

		var employee *domain.Employee = nil
		for _, e := range employees {
			if e.ID == empID {
				employee = e
				break
			}
		}

		if employee == nil {
			return nil, fmt.Errorf("员工 %d 不在传入的 employees 数组中", empID)
		}

		s.employees = append(s.employees, employee)
	}

	return s, nil
}

// candidates 返回 (shift, day) 可选的员工，已经在当天别处上班的员工被排除
func (s *Scheduler) candidates(shiftID int64, day int32, date string) []int64 {
	out := make([]int64, 0, len(s.availableMap[shiftID][day]))
	for _, empID := range s.availableMap[shiftID][day] {
		if s.busy[date][empID] {
			continue
		}
		out = append(out, empID)
	}
	return out
}

func (s *Scheduler) Schedule() ([]domain.Assignment, error) {
	// 生成初始种群
	pop := make([]*Chromosome, s.parameters.PopulationSize)
	for i := 0; i < int(s.parameters.PopulationSize); i++ {
		ch, err := s.randomInitChromosome()
		if err != nil {
			return nil, err
		}
		pop[i] = ch
		s.calcFitness(pop[i])
	}

	if len(pop[0].genes) == 0 {
		// 这个岗位这一周不需要任何人
		return []domain.Assignment{}, nil
	}

	bestChromosomeEver := &Chromosome{
		genes:   nil,
		fitness: -math.MaxFloat64,
	}

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		// 保留精英，同时记录历史最佳
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		if pop[0].fitness > bestChromosomeEver.fitness {
			// 深拷贝，防止后续繁殖的过程中修改到最佳样本
			bestChromosomeEver = pop[0].clone()
		}

		newPop := make([]*Chromosome, 0, s.parameters.PopulationSize)
		for i := 0; i < int(s.parameters.EliteCount); i++ {
			newPop = append(newPop, pop[i].clone())
		}

		// 在剩余的染色体中进行交叉和变异
		for len(newPop) < int(s.parameters.PopulationSize) {
			// 父本需要拷贝，否则同一个染色体被选中两次时会互相影响
			p1 := s.selectByRoulette(pop).clone()
			p2 := s.selectByRoulette(pop).clone()

			if s.rand.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)

			if len(newPop) < int(s.parameters.PopulationSize) {
				newPop = append(newPop, p2)
			}
		}

		for i := range newPop {
			s.calcFitness(newPop[i])
		}
		pop = newPop
	}

	for _, ch := range pop {
		if ch.fitness > bestChromosomeEver.fitness {
			bestChromosomeEver = ch.clone()
		}
	}

	s.repair(bestChromosomeEver)

	// 返回结果
	result := make([]domain.Assignment, 0)
	for _, gene := range bestChromosomeEver.genes {
		for _, empID := range gene.empIDs {
			result = append(result, domain.Assignment{
				EmpID:          empID,
				PositionID:     s.position.ID,
				ShiftID:        gene.shiftID,
				WorkDate:       gene.date,
				AssignmentType: domain.AssignmentTypeRegular,
			})
		}
	}

	// 还需要检查一下结果是否满足约束条件
	if err := utils.ValidateAssignmentsWithAvailability(result, s.availabilities); err != nil {
		return nil, err
	}
	if err := utils.ValidIfExistsDuplicateAssignment(result); err != nil {
		return nil, err
	}

	return result, nil
}
