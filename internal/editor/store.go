package editor

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

type Entry struct {
	Key    string               `json:"key" validate:"required"`
	Change domain.PendingChange `json:"change" validate:"required"`
}

// Store 保存当前编辑会话中所有尚未提交的修改。
// 除了按键索引之外还维护一个按岗位的索引，使得按岗位应用或清除修改不需要全表扫描。
type Store struct {
	mu         sync.RWMutex
	validate   *validator.Validate
	changes    map[string]domain.PendingChange
	byPosition map[int64]map[string]struct{}
	version    uint64
}

func NewStore() *Store {
	return &Store{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		changes:    make(map[string]domain.PendingChange),
		byPosition: make(map[int64]map[string]struct{}),
	}
}

func (s *Store) check(key string, change domain.PendingChange) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: 键不能为空", ErrMalformedChange)
	}
	if err := s.validate.Struct(change); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedChange, key, err)
	}
	return nil
}

// put 需要在持有写锁的情况下调用
func (s *Store) put(key string, change domain.PendingChange) {
	if old, exists := s.changes[key]; exists && old.PositionID != change.PositionID {
		s.unindex(old.PositionID, key)
	}

	change.Key = key
	s.changes[key] = change

	if _, exists := s.byPosition[change.PositionID]; !exists {
		s.byPosition[change.PositionID] = make(map[string]struct{})
	}
	s.byPosition[change.PositionID][key] = struct{}{}
}

// del 需要在持有写锁的情况下调用
func (s *Store) del(key string) bool {
	change, exists := s.changes[key]
	if !exists {
		return false
	}
	delete(s.changes, key)
	s.unindex(change.PositionID, key)
	return true
}

func (s *Store) unindex(positionID int64, key string) {
	keys, exists := s.byPosition[positionID]
	if !exists {
		return
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(s.byPosition, positionID)
	}
}

// AddChange 插入或覆盖一条修改
func (s *Store) AddChange(key string, change domain.PendingChange) error {
	if err := s.check(key, change); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(key, change)
	s.version++
	return nil
}

// AddBatch 先校验所有条目，再在同一个临界区内全部写入，读者不会看到只写了一半的批次
func (s *Store) AddBatch(entries []Entry) error {
	for _, entry := range entries {
		if err := s.check(entry.Key, entry.Change); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		s.put(entry.Key, entry.Change)
	}
	s.version++
	return nil
}

// RemoveChange 删除一条修改，键不存在时什么也不做
func (s *Store) RemoveChange(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.del(key) {
		s.version++
	}
}

// ApplyForPosition 在成功提交到后端之后调用，只打上已应用的标记而不删除，
// 这样界面仍然可以展示本次编辑的差异。remove 同样会被标记，否则之后的提交会再次发送
func (s *Store) ApplyForPosition(positionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for key := range s.byPosition[positionID] {
		change := s.changes[key]
		if change.IsApplied {
			continue
		}
		change.IsApplied = true
		s.changes[key] = change
		changed = true
	}
	if changed {
		s.version++
	}
}

// ClearForPosition 在取消编辑时调用
func (s *Store) ClearForPosition(positionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, exists := s.byPosition[positionID]
	if !exists {
		return
	}
	for key := range keys {
		delete(s.changes, key)
	}
	delete(s.byPosition, positionID)
	s.version++
}

// ClearAutofillFlags 清除自动填充标记并标记为已保存，不传 keys 时作用于所有修改
func (s *Store) ClearAutofillFlags(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := keys
	if len(targets) == 0 {
		for key := range s.changes {
			targets = append(targets, key)
		}
	}

	changed := false
	for _, key := range targets {
		change, exists := s.changes[key]
		if !exists || !change.IsAutofilled {
			continue
		}
		change.IsAutofilled = false
		change.IsSaved = true
		s.changes[key] = change
		changed = true
	}
	if changed {
		s.version++
	}
}

// ApplyOps 把拖拽的结果原子地写入 store
func (s *Store) ApplyOps(result DropResult) error {
	if msg, rejected := result.Rejected(); rejected {
		return fmt.Errorf("%w: %s", ErrRejectedDrop, msg)
	}

	var adds []Entry
	var removals []string
	for _, op := range result.Ops {
		switch op.Kind {
		case DropOpAdd:
			if op.Change == nil {
				return fmt.Errorf("%w: %s 缺少修改内容", ErrMalformedChange, op.Key)
			}
			if err := s.check(op.Key, *op.Change); err != nil {
				return err
			}
			adds = append(adds, Entry{Key: op.Key, Change: *op.Change})
		case DropOpRemovePending:
			removals = append(removals, op.Key)
		case DropOpCreateFlexibleShift:
			// 弹性班次需要用户确认后再创建，这里不改动 store
		}
	}
	if len(adds) == 0 && len(removals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range removals {
		s.del(key)
	}
	for _, entry := range adds {
		s.put(entry.Key, entry.Change)
	}
	s.version++
	return nil
}

func (s *Store) Get(key string) (domain.PendingChange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	change, exists := s.changes[key]
	return change, exists
}

// Snapshot 返回按键排序的副本
func (s *Store) Snapshot() []domain.PendingChange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PendingChange, 0, len(s.changes))
	for _, change := range s.changes {
		out = append(out, change)
	}
	sortByKey(out)
	return out
}

func (s *Store) ForPosition(positionID int64) []domain.PendingChange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PendingChange, 0, len(s.byPosition[positionID]))
	for key := range s.byPosition[positionID] {
		out = append(out, s.changes[key])
	}
	sortByKey(out)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.changes)
}

// Version 每次修改后递增，用于判断依赖 store 的派生数据是否需要重新计算
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

func sortByKey(changes []domain.PendingChange) {
	slices.SortFunc(changes, func(a, b domain.PendingChange) int {
		return strings.Compare(a.Key, b.Key)
	})
}
