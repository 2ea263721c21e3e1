package scheduler

// Gene: 表示对某个 (shift, date) 的排班决策
type Gene struct {
	shiftID      int64
	day          int32  // 1~7
	date         string // YYYY-MM-DD
	empIDs       []int64
	requiredNum  int32
	workDuration float64
}

func (g *Gene) clone() *Gene {
	out := *g
	out.empIDs = make([]int64, len(g.empIDs))
	copy(out.empIDs, g.empIDs)
	return &out
}

// Chromosome: 一个岗位一周的排班
type Chromosome struct {
	genes   []*Gene
	fitness float64
}

func (c *Chromosome) clone() *Chromosome {
	out := &Chromosome{
		genes:   make([]*Gene, len(c.genes)),
		fitness: c.fitness,
	}
	for i, gene := range c.genes {
		out.genes[i] = gene.clone()
	}
	return out
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量
	FairnessWeight float64 // 公平性权重
	Seed           int64   // 随机种子，0 表示使用当前时间
}

const (
	uncoveredWeight   = 10.0  // 每缺一个人的惩罚
	doubleBookWeight  = 100.0 // 同一天被排到两个班次的惩罚
	crossPositionCost = 0.5   // 排到非默认岗位的员工的惩罚
)
