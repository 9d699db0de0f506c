package systems

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
)

// SettleReport 一次结算的统计
type SettleReport struct {
	Cascades int // 找到匹配的扫描轮数
	Removed  int // 移除的方块数（含被激活的方块）
	Moves    int // 方块下移次数
}

// MatchResolver 匹配结算器
//
// 激活一个方块后：移除该方块 → 压缩所在列 → 全盘落到底 → 全盘扫描，
// 若有横向连续 ≥3 个同色方块则标记并移除、压缩、再扫描，直到扫描不到匹配。
//
// 整个结算同步执行，busy 标记在第一次修改前通过 CAS 设置，
// 结算结束（或出错）后清除。结算期间的外部激活一律以 ErrBusy 拒绝。
type MatchResolver struct {
	entityManager  *ecs.EntityManager
	grid           *GridSystem
	minMatchLength int
	busy           atomic.Bool
}

// NewMatchResolver 创建匹配结算器
// 参数:
//   - em: EntityManager 实例（用于清理被销毁的方块实体）
//   - grid: 棋盘系统
func NewMatchResolver(em *ecs.EntityManager, grid *GridSystem) *MatchResolver {
	minMatch := grid.Config().MinMatchLength
	if minMatch <= 0 {
		minMatch = config.DefaultMinMatchLength
	}

	return &MatchResolver{
		entityManager:  em,
		grid:           grid,
		minMatchLength: minMatch,
	}
}

// IsBusy 棋盘是否正在结算
func (r *MatchResolver) IsBusy() bool {
	return r.busy.Load()
}

// Activate 激活指定格子的方块并结算到稳定
//
// 返回:
//   - SettleReport: 本次结算统计
//   - error: ErrOutOfBounds（越界）、ErrBusy（结算中）、
//     ErrInvalidOperation（空格子或内部不一致）
//
// 被拒绝的激活不会修改网格。
func (r *MatchResolver) Activate(col, row int) (SettleReport, error) {
	var report SettleReport

	if !r.grid.InBounds(col, row) {
		return report, fmt.Errorf("activate: %w: col=%d, row=%d", ErrOutOfBounds, col, row)
	}

	if !r.busy.CompareAndSwap(false, true) {
		return report, fmt.Errorf("activate (%d, %d): %w", col, row, ErrBusy)
	}
	defer r.busy.Store(false)
	defer r.entityManager.RemoveMarkedEntities()

	id, _, err := r.grid.TileAt(col, row)
	if err != nil {
		return report, err
	}
	if id == 0 {
		return report, fmt.Errorf("activate: %w: slot (%d, %d) is empty", ErrInvalidOperation, col, row)
	}

	if err := r.grid.RemoveAt(col, row); err != nil {
		return report, err
	}
	report.Removed++

	moved, err := r.grid.CompactColumn(col, row)
	if err != nil {
		return report, err
	}
	report.Moves += moved

	// 预设布局可能还有悬空方块，扫描前先全部落到底
	moved, err = r.grid.ApplyGravity()
	if err != nil {
		return report, err
	}
	report.Moves += moved

	if err := r.settle(&report); err != nil {
		return report, err
	}

	log.Printf("[MatchResolver] Activated (%d, %d): %d cascades, %d removed, %d moves",
		col, row, report.Cascades, report.Removed, report.Moves)
	return report, nil
}

// Settle 不移除任何方块，直接让棋盘落到底并结算
//
// 用于预设布局的初始稳定。已经稳定的棋盘上不会产生任何修改。
func (r *MatchResolver) Settle() (SettleReport, error) {
	var report SettleReport

	if !r.busy.CompareAndSwap(false, true) {
		return report, fmt.Errorf("settle: %w", ErrBusy)
	}
	defer r.busy.Store(false)
	defer r.entityManager.RemoveMarkedEntities()

	moved, err := r.grid.ApplyGravity()
	if err != nil {
		return report, err
	}
	report.Moves += moved

	if err := r.settle(&report); err != nil {
		return report, err
	}
	return report, nil
}

// settle 扫描 → 移除 → 压缩 循环，直到一次完整扫描没有任何匹配
func (r *MatchResolver) settle(report *SettleReport) error {
	for {
		matched := r.scanAll()
		if matched == 0 {
			return nil
		}
		report.Cascades++

		removed, moved, err := r.removeMatched()
		if err != nil {
			return err
		}
		if removed != matched {
			return fmt.Errorf("%w: marked %d tiles but removed %d", ErrInvalidOperation, matched, removed)
		}
		report.Removed += removed
		report.Moves += moved

		moved, err = r.grid.ApplyGravity()
		if err != nil {
			return err
		}
		report.Moves += moved

		log.Printf("[MatchResolver] Cascade %d: removed %d tiles", report.Cascades, removed)
	}
}

// scanAll 以每个非空格子为起点（行优先）做一次横向扫描
// 扫描期间不修改网格，返回被标记为 Matched 的方块数
func (r *MatchResolver) scanAll() int {
	cols, rows := r.grid.Columns(), r.grid.Rows()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if origin := r.grid.tileAt(col, row); origin != nil {
				r.scanFrom(origin)
			}
		}
	}

	matched := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if tile := r.grid.tileAt(col, row); tile != nil && tile.Matched {
				matched++
			}
		}
	}
	return matched
}

// scanFrom 从起点分别向左、向右延伸
//
// 计数器从 1 开始（起点自身），每遇到一个与上一个比较对象同色的邻居加 1，
// 遇到空格子、边界或不同颜色即停止。计数 ≥ minMatchLength 时本次访问过的
// 方块全部标记为 Matched，否则清除其中尚未 Matched 的 Checked 标记。
// 只检测横向连线。
func (r *MatchResolver) scanFrom(origin *components.TileComponent) {
	matches := 1
	origin.Checked = true
	visited := []*components.TileComponent{origin}

	for _, step := range [...]int{-1, 1} {
		prev := origin
		for col := origin.Col + step; col >= 0 && col < r.grid.Columns(); col += step {
			neighbor := r.grid.tileAt(col, origin.Row)
			if neighbor == nil || !neighbor.Color.Equal(prev.Color) {
				break
			}
			neighbor.Checked = true
			visited = append(visited, neighbor)
			matches++
			prev = neighbor
		}
	}

	if matches >= r.minMatchLength {
		for _, tile := range visited {
			tile.Matched = true
		}
		return
	}

	for _, tile := range visited {
		if !tile.Matched {
			tile.Checked = false
		}
	}
}

// removeMatched 逐列、自上而下移除已标记方块，每移除一个立即压缩该列
//
// 匹配在修改网格前已经全部标记完毕，某一列的移除不会影响其他列的判定。
// 压缩只会把上方（已处理过、未标记的）方块下移，所以自上而下遍历不会漏掉标记。
func (r *MatchResolver) removeMatched() (removed, moved int, err error) {
	for col := 0; col < r.grid.Columns(); col++ {
		for row := r.grid.Rows() - 1; row >= 0; row-- {
			tile := r.grid.tileAt(col, row)
			if tile == nil || !tile.Matched {
				continue
			}

			if err := r.grid.RemoveAt(col, row); err != nil {
				return removed, moved, err
			}
			removed++

			n, err := r.grid.CompactColumn(col, row)
			if err != nil {
				return removed, moved, err
			}
			moved += n
		}
	}
	return removed, moved, nil
}
