package scheduler

import (
	"math"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// shiftDuration 返回班次时长（小时），结束时间不晚于开始时间时视为跨夜
func shiftDuration(shift *domain.Shift) float64 {
	startTime, err := parseClock(shift.StartTime)
	if err != nil {
		return 0
	}
	endTime, err := parseClock(shift.EndTime)
	if err != nil {
		return 0
	}
	if !endTime.After(startTime) {
		endTime = endTime.Add(24 * time.Hour)
	}
	return endTime.Sub(startTime).Hours()
}

func parseClock(t string) (time.Time, error) {
	if len(t) > 5 {
		return time.Parse("15:04:05", t)
	}
	return time.Parse("15:04", t)
}

// randomInitChromosome 随机初始化一个染色体，同一天已经被选中的员工会尽量避开
func (s *Scheduler) randomInitChromosome() (*Chromosome, error) {
	var genes []*Gene
	usedByDate := make(map[string]map[int64]bool)

	for i := 0; i < 7; i++ {
		date, err := domain.AddDays(s.weekStart, i)
		if err != nil {
			return nil, err
		}
		day := int32(i + 1)
		if _, exists := usedByDate[date]; !exists {
			usedByDate[date] = make(map[int64]bool)
		}

		for j := range s.position.Shifts {
			shift := &s.position.Shifts[j]
			if shift.IsFlexible {
				continue
			}

			required := s.position.Requirements.Required(shift.ID, day)
			if required <= 0 {
				continue
			}

			// 找出可以在 (shift, day) 中值班的候选，并把当天还没上班的排在前面
			candidates := s.candidates(shift.ID, day, date)
			s.rand.Shuffle(len(candidates), func(a, b int) {
				candidates[a], candidates[b] = candidates[b], candidates[a]
			})
			slices.SortStableFunc(candidates, func(a, b int64) int {
				switch {
				case usedByDate[date][a] == usedByDate[date][b]:
					return 0
				case usedByDate[date][a]:
					return 1
				default:
					return -1
				}
			})

			chosenNum := min(int(required), len(candidates))
			chosen := make([]int64, chosenNum)
			copy(chosen, candidates[:chosenNum])
			for _, empID := range chosen {
				usedByDate[date][empID] = true
			}

			// 生成基因
			genes = append(genes, &Gene{
				shiftID:      shift.ID,
				day:          day,
				date:         date,
				empIDs:       chosen,
				requiredNum:  required,
				workDuration: shiftDuration(shift),
			})
		}
	}

	return &Chromosome{
		genes: genes,
	}, nil
}

/**
 * 计算染色体的适应度
 * fitness = - uncoveredPenalty - doubleBookPenalty - crossPositionPenalty - notWorkPenalty - FairnessWeight * fairnessPenalty
 * 其中:
 * 		1. uncoveredPenalty 为缺人惩罚，每缺一个人扣一次
 * 		2. doubleBookPenalty 为同一员工同一天被排到多个班次的惩罚
 * 		3. crossPositionPenalty 为员工被排到非默认岗位的惩罚
 * 		4. notWorkPenalty 为未工作惩罚（用于确保每个员工都尽可能工作）
 * 		5. fairnessPenalty 为公平性惩罚（用于确保每个员工的工作量尽可能均衡）
 */
func (s *Scheduler) calcFitness(ch *Chromosome) {
	// 所有提交了空闲时间的员工都要参与统计，否则没上班的员工体现不出来
	empWorkCnt := make(map[int64]float64, len(s.employees))
	for _, employee := range s.employees {
		empWorkCnt[employee.ID] = 0
	}

	uncovered := 0.0
	doubleBooked := 0.0
	crossPosition := 0.0
	seen := make(map[string]map[int64]bool)

	for _, gene := range ch.genes {
		uncovered += float64(max(int(gene.requiredNum)-len(gene.empIDs), 0))

		if _, exists := seen[gene.date]; !exists {
			seen[gene.date] = make(map[int64]bool)
		}

		for _, empID := range gene.empIDs {
			empWorkCnt[empID] += gene.workDuration

			if seen[gene.date][empID] {
				doubleBooked++
			}
			seen[gene.date][empID] = true

			if employee := s.employee(empID); employee != nil && employee.DefaultPositionID != nil && *employee.DefaultPositionID != s.position.ID {
				crossPosition++
			}
		}
	}

	// 计算 notWorkPenalty
	notWorkPenalty := 0.0
	for _, workCnt := range empWorkCnt {
		if workCnt == 0 {
			notWorkPenalty += 1
		}
	}

	// 计算 fairnessPenalty（即方差）
	variance := 0.0
	if len(empWorkCnt) > 0 {
		avgWorkCnt := 0.0
		for _, workCnt := range empWorkCnt {
			avgWorkCnt += workCnt
		}
		avgWorkCnt /= float64(len(empWorkCnt))

		for _, workCnt := range empWorkCnt {
			variance += math.Pow(workCnt-avgWorkCnt, 2)
		}
		variance /= float64(len(empWorkCnt))
	}

	ch.fitness = -uncoveredWeight*uncovered -
		doubleBookWeight*doubleBooked -
		crossPositionCost*crossPosition -
		notWorkPenalty -
		s.parameters.FairnessWeight*variance
}

func (s *Scheduler) employee(empID int64) *domain.Employee {
	for _, employee := range s.employees {
		if employee.ID == empID {
			return employee
		}
	}
	return nil
}

// 使用轮盘赌来进行选择。适应度都是负数，先平移到正数区间
func (s *Scheduler) selectByRoulette(pop []*Chromosome) *Chromosome {
	minFit := math.MaxFloat64
	for _, ch := range pop {
		minFit = min(minFit, ch.fitness)
	}

	sumFit := 0.0
	for _, ch := range pop {
		sumFit += ch.fitness - minFit + 1
	}
	pick := s.rand.Float64() * sumFit
	partial := 0.0

	for _, ch := range pop {
		partial += ch.fitness - minFit + 1
		if partial >= pick {
			return ch
		}
	}

	// 理论上不会运行到这个地方
	return pop[len(pop)-1]
}

// 单点交叉
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	length1 := len(ch1.genes)
	length2 := len(ch2.genes)

	if length1 != length2 || length1 == 0 {
		// 按理来说两个染色体的长度应该能保证是相等的
		// 这里只是以防万一
		return
	}

	length := length1

	// 随机选择一个位置
	point := s.rand.Intn(length)

	// 交换两个染色体在 point 位置之后的基因
	for i := point; i < length; i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异
// 每个员工都有一定概率被替换成其他候选，人数不足时也有一定概率补一个人
func (s *Scheduler) mutate(ch *Chromosome) {
	for _, gene := range ch.genes {
		if s.rand.Float64() > s.parameters.MutationRate {
			continue
		}

		var candidates []int64
		for _, empID := range s.candidates(gene.shiftID, gene.day, gene.date) {
			// 已经在这个班次中的员工不放入候选
			if slices.Contains(gene.empIDs, empID) {
				continue
			}
			candidates = append(candidates, empID)
		}
		if len(candidates) == 0 {
			continue
		}

		if len(gene.empIDs) < int(gene.requiredNum) {
			gene.empIDs = append(gene.empIDs, candidates[s.rand.Intn(len(candidates))])
			continue
		}

		if len(gene.empIDs) > 0 {
			j := s.rand.Intn(len(gene.empIDs))
			gene.empIDs[j] = candidates[s.rand.Intn(len(candidates))]
		}
	}
}

// repair 去掉同一天被排到多个班次的员工，只保留第一次出现的位置
func (s *Scheduler) repair(ch *Chromosome) {
	seen := make(map[string]map[int64]bool)

	for _, gene := range ch.genes {
		if _, exists := seen[gene.date]; !exists {
			seen[gene.date] = make(map[int64]bool)
		}

		kept := gene.empIDs[:0]
		for _, empID := range gene.empIDs {
			if seen[gene.date][empID] {
				continue
			}
			seen[gene.date][empID] = true
			kept = append(kept, empID)
		}
		gene.empIDs = kept
	}
}
