package systems

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/entities"
	"github.com/decker502/tilematch/pkg/types"
	"github.com/decker502/tilematch/pkg/utils"
)

// GridSystem 管理棋盘网格
//
// 负责格子存储、坐标映射以及结构修改原语（移除、列压缩、查询）。
// 不包含任何匹配逻辑，匹配由 MatchResolver 驱动。
//
// 不变量：
//   - 每个非空格子中方块的 Col/Row 等于格子坐标
//   - 网格尺寸创建后不再改变
type GridSystem struct {
	entityManager *ecs.EntityManager
	gridEntity    ecs.EntityID
	config        *config.BoardConfig
	layout        utils.GridLayout
	observers     []BoardObserver
}

// NewGridSystem 创建棋盘并填充所有格子
//
// 配置带有 Layout 时按预设布局创建，否则随机填充：
// 每个方块的颜色从调色板中选取，排除同一行紧邻左侧方块的颜色
// （只看左侧，不看下方）。
//
// 参数:
//   - em: EntityManager 实例
//   - cfg: 棋盘配置，nil 时使用默认配置
//   - factory: 方块工厂，nil 时使用 entities.NewTileEntity
//   - rng: 随机数源，nil 时根据 cfg.Seed 创建
//
// 返回:
//   - *GridSystem: 棋盘系统实例
//   - error: 配置无效时返回包装了 ErrConfiguration 的错误
func NewGridSystem(em *ecs.EntityManager, cfg *config.BoardConfig, factory entities.TileFactory, rng *rand.Rand) (*GridSystem, error) {
	if cfg == nil {
		cfg = config.DefaultBoardConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		factory = entities.NewTileEntity
	}

	s := newGridSystem(em, cfg)

	if len(cfg.Layout) > 0 {
		if err := s.fillFromLayout(factory); err != nil {
			return nil, err
		}
		log.Printf("[GridSystem] Created %dx%d board from layout (%d tiles)", cfg.Columns, cfg.Rows, s.TileCount())
		return s, nil
	}

	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	colors, err := cfg.Colors()
	if err != nil {
		return nil, err
	}
	if err := s.fillRandom(colors, factory, rng); err != nil {
		return nil, err
	}

	log.Printf("[GridSystem] Created %dx%d board with %d colors", cfg.Columns, cfg.Rows, len(colors))
	return s, nil
}

// NewGridSystemFromLayout 按预设布局创建棋盘，行列数取自布局
//
// layout 从最上面一行开始，每个字符是调色板 key，"." 表示空格子。
// 布局中的悬空方块保持原样，由 MatchResolver.Settle 或下一次 Activate 使其落下。
func NewGridSystemFromLayout(em *ecs.EntityManager, cfg *config.BoardConfig, factory entities.TileFactory, layout ...string) (*GridSystem, error) {
	if cfg == nil {
		cfg = config.DefaultBoardConfig()
	}
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrConfiguration)
	}
	return NewGridSystem(em, cfg.WithLayout(layout...), factory, nil)
}

// newGridSystem 创建网格实体和空网格
func newGridSystem(em *ecs.EntityManager, cfg *config.BoardConfig) *GridSystem {
	gridEntity := em.CreateEntity()
	em.AddComponent(gridEntity, &components.BoardGridComponent{
		Columns: cfg.Columns,
		Rows:    cfg.Rows,
		Slots:   make([]ecs.EntityID, cfg.Columns*cfg.Rows),
	})

	return &GridSystem{
		entityManager: em,
		gridEntity:    gridEntity,
		config:        cfg,
		layout:        LayoutFromConfig(cfg),
	}
}

// LayoutFromConfig 根据配置计算网格的世界坐标摆放方式
func LayoutFromConfig(cfg *config.BoardConfig) utils.GridLayout {
	return utils.GridLayout{
		Origin:   utils.Vec3{X: cfg.Origin.X, Y: cfg.Origin.Y, Z: cfg.Origin.Z},
		CellSize: cfg.CellSize,
	}
}

// fillRandom 随机填充所有格子，避免同一行横向相邻同色
func (s *GridSystem) fillRandom(colors []types.TileColor, factory entities.TileFactory, rng *rand.Rand) error {
	cols, rows := s.Columns(), s.Rows()

	// previousLeft[row] 记录该行最近一次放置的颜色
	previousLeft := make([]types.TileColor, rows)
	hasLeft := make([]bool, rows)
	candidates := make([]types.TileColor, 0, len(colors))

	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			candidates = candidates[:0]
			for _, c := range colors {
				if hasLeft[row] && c.Equal(previousLeft[row]) {
					continue
				}
				candidates = append(candidates, c)
			}
			if len(candidates) == 0 {
				return fmt.Errorf("%w: no color available for slot (%d, %d)", ErrConfiguration, col, row)
			}

			chosen := candidates[rng.Intn(len(candidates))]
			previousLeft[row] = chosen
			hasLeft[row] = true

			if err := s.place(factory(s.entityManager, chosen, col, row), col, row); err != nil {
				return err
			}
		}
	}

	return nil
}

// fillFromLayout 按配置中的预设布局填充
func (s *GridSystem) fillFromLayout(factory entities.TileFactory) error {
	rows := s.Rows()

	for i, line := range s.config.Layout {
		row := rows - 1 - i
		for col := 0; col < len(line); col++ {
			key := line[col : col+1]
			if key == config.EmptySlotKey {
				continue
			}
			color, ok := s.config.ColorForKey(key)
			if !ok {
				return fmt.Errorf("%w: unknown layout key %q at (%d, %d)", ErrConfiguration, key, col, row)
			}
			if err := s.place(factory(s.entityManager, color, col, row), col, row); err != nil {
				return err
			}
		}
	}

	return nil
}

// place 把工厂创建的方块放入格子
func (s *GridSystem) place(id ecs.EntityID, col, row int) error {
	tile, ok := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
	if !ok {
		return fmt.Errorf("%w: tile factory returned entity %d without TileComponent", ErrInvalidOperation, id)
	}
	tile.Col = col
	tile.Row = row

	grid := s.grid()
	grid.Slots[s.index(col, row)] = id
	return nil
}

// grid 获取网格组件
func (s *GridSystem) grid() *components.BoardGridComponent {
	grid, _ := ecs.GetComponent[*components.BoardGridComponent](s.entityManager, s.gridEntity)
	return grid
}

// index 行优先索引
func (s *GridSystem) index(col, row int) int {
	return row*s.Columns() + col
}

// Columns 返回列数
func (s *GridSystem) Columns() int {
	return s.config.Columns
}

// Rows 返回行数
func (s *GridSystem) Rows() int {
	return s.config.Rows
}

// Config 返回棋盘配置
func (s *GridSystem) Config() *config.BoardConfig {
	return s.config
}

// WorldLayout 返回网格的世界坐标摆放方式
func (s *GridSystem) WorldLayout() utils.GridLayout {
	return s.layout
}

// AddObserver 注册表现层回调
func (s *GridSystem) AddObserver(observer BoardObserver) {
	s.observers = append(s.observers, observer)
}

// InBounds 检查坐标是否在网格范围内
func (s *GridSystem) InBounds(col, row int) bool {
	return col >= 0 && col < s.Columns() && row >= 0 && row < s.Rows()
}

// checkBounds 越界时返回 ErrOutOfBounds
func (s *GridSystem) checkBounds(col, row int) error {
	if !s.InBounds(col, row) {
		return fmt.Errorf("%w: col=%d, row=%d (valid range: col 0-%d, row 0-%d)",
			ErrOutOfBounds, col, row, s.Columns()-1, s.Rows()-1)
	}
	return nil
}

// TileAt 查询格子中的方块
//
// 返回:
//   - ecs.EntityID: 方块实体，空格子为 0
//   - *components.TileComponent: 方块数据，空格子为 nil
//   - error: 越界时返回 ErrOutOfBounds
func (s *GridSystem) TileAt(col, row int) (ecs.EntityID, *components.TileComponent, error) {
	if err := s.checkBounds(col, row); err != nil {
		return 0, nil, err
	}

	id := s.grid().Slots[s.index(col, row)]
	if id == 0 {
		return 0, nil, nil
	}

	tile, ok := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
	if !ok {
		return 0, nil, fmt.Errorf("%w: slot (%d, %d) references entity %d without TileComponent",
			ErrInvalidOperation, col, row, id)
	}
	return id, tile, nil
}

// tileAt 内部查询，调用方保证坐标有效
func (s *GridSystem) tileAt(col, row int) *components.TileComponent {
	id := s.grid().Slots[s.index(col, row)]
	if id == 0 {
		return nil
	}
	tile, _ := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
	return tile
}

// RemoveAt 销毁格子中的方块并清空格子
//
// 实体被标记删除，真正的清理由 EntityManager.RemoveMarkedEntities 完成。
//
// 返回:
//   - error: 越界返回 ErrOutOfBounds，空格子返回 ErrInvalidOperation
func (s *GridSystem) RemoveAt(col, row int) error {
	id, tile, err := s.TileAt(col, row)
	if err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("%w: slot (%d, %d) is already empty", ErrInvalidOperation, col, row)
	}

	s.grid().Slots[s.index(col, row)] = 0

	for _, observer := range s.observers {
		observer.OnTileRemoved(id, tile)
	}
	s.entityManager.DestroyEntity(id)
	return nil
}

// CompactColumn 将 fromRow 以上的所有格子整体下移一格
//
// fromRow 必须为空格子。下移后最上方格子为空，剩余方块的相对顺序不变，
// 每个被移动方块的 Row 减 1 并通知观察者。
//
// 返回:
//   - int: 实际移动的方块数量（fromRow 以上全空时为 0）
//   - error: 越界返回 ErrOutOfBounds，fromRow 被占用返回 ErrInvalidOperation
func (s *GridSystem) CompactColumn(col, fromRow int) (int, error) {
	if err := s.checkBounds(col, fromRow); err != nil {
		return 0, err
	}

	grid := s.grid()
	if grid.Slots[s.index(col, fromRow)] != 0 {
		return 0, fmt.Errorf("%w: cannot compact column %d from occupied row %d", ErrInvalidOperation, col, fromRow)
	}

	rows := s.Rows()
	moved := make([]ecs.EntityID, 0, rows-fromRow)

	for row := fromRow; row < rows-1; row++ {
		id := grid.Slots[s.index(col, row+1)]
		grid.Slots[s.index(col, row)] = id
		if id == 0 {
			continue
		}

		tile, ok := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
		if !ok {
			return len(moved), fmt.Errorf("%w: entity %d in column %d has no TileComponent", ErrInvalidOperation, id, col)
		}
		tile.Row--
		moved = append(moved, id)
	}
	grid.Slots[s.index(col, rows-1)] = 0

	for _, id := range moved {
		tile, _ := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
		for _, observer := range s.observers {
			observer.OnTileMoved(id, tile)
		}
	}

	return len(moved), nil
}

// ApplyGravity 让所有悬空方块落到底
//
// 反复查找第一个"上方还有方块"的空格子（行优先），从该行压缩所在列，
// 直到任何空格子上方都没有方块。
//
// 返回:
//   - int: 累计移动的方块次数
func (s *GridSystem) ApplyGravity() (int, error) {
	total := 0
	for {
		col, row, found := s.findHoleUnderTile()
		if !found {
			return total, nil
		}

		moved, err := s.CompactColumn(col, row)
		if err != nil {
			return total, err
		}
		total += moved
	}
}

// findHoleUnderTile 行优先查找第一个上方有方块的空格子
func (s *GridSystem) findHoleUnderTile() (col, row int, found bool) {
	grid := s.grid()
	for row := 0; row < s.Rows()-1; row++ {
		for col := 0; col < s.Columns(); col++ {
			if grid.Slots[s.index(col, row)] != 0 {
				continue
			}
			if s.hasTileAbove(col, row) {
				return col, row, true
			}
		}
	}
	return 0, 0, false
}

// hasTileAbove 检查格子上方是否还有方块
func (s *GridSystem) hasTileAbove(col, row int) bool {
	grid := s.grid()
	for above := row + 1; above < s.Rows(); above++ {
		if grid.Slots[s.index(col, above)] != 0 {
			return true
		}
	}
	return false
}

// HasFloatingTiles 检查是否存在悬空方块
func (s *GridSystem) HasFloatingTiles() bool {
	_, _, found := s.findHoleUnderTile()
	return found
}

// GridToWorld 网格坐标转世界坐标（格子左下角）
func (s *GridSystem) GridToWorld(col, row int) utils.Vec3 {
	return s.layout.GridToWorld(col, row)
}

// WorldToGrid 世界坐标转网格坐标，越界时 isValid 为 false
func (s *GridSystem) WorldToGrid(point utils.Vec3) (col, row int, isValid bool) {
	return s.layout.WorldToGrid(point, s.Columns(), s.Rows())
}

// TileCount 返回棋盘上的方块数量
func (s *GridSystem) TileCount() int {
	count := 0
	for _, id := range s.grid().Slots {
		if id != 0 {
			count++
		}
	}
	return count
}

// LongestHorizontalRun 返回棋盘上最长的横向连续同色方块数
func (s *GridSystem) LongestHorizontalRun() int {
	longest := 0
	for row := 0; row < s.Rows(); row++ {
		run := 0
		var prev *components.TileComponent
		for col := 0; col < s.Columns(); col++ {
			tile := s.tileAt(col, row)
			switch {
			case tile == nil:
				run = 0
			case prev != nil && tile.Color.Equal(prev.Color):
				run++
			default:
				run = 1
			}
			prev = tile
			if run > longest {
				longest = run
			}
		}
	}
	return longest
}

// CheckConsistency 校验网格不变量
//
// 每个非空格子引用的实体必须存在且带有 TileComponent，
// 其 Col/Row 与格子坐标一致，并且没有残留的扫描标记。
// 结算之间不应有等待清理的实体，实体总数等于方块数加网格实体。
func (s *GridSystem) CheckConsistency() error {
	grid := s.grid()
	if len(grid.Slots) != s.Columns()*s.Rows() {
		return fmt.Errorf("%w: slot array resized to %d", ErrInvalidOperation, len(grid.Slots))
	}

	for row := 0; row < s.Rows(); row++ {
		for col := 0; col < s.Columns(); col++ {
			id := grid.Slots[s.index(col, row)]
			if id == 0 {
				continue
			}
			if !s.entityManager.IsAlive(id) {
				return fmt.Errorf("%w: slot (%d, %d) references destroyed entity %d", ErrInvalidOperation, col, row, id)
			}
			tile, ok := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
			if !ok {
				return fmt.Errorf("%w: slot (%d, %d) references missing tile %d", ErrInvalidOperation, col, row, id)
			}
			if tile.Col != col || tile.Row != row {
				return fmt.Errorf("%w: tile %d at slot (%d, %d) believes it is at (%d, %d)",
					ErrInvalidOperation, id, col, row, tile.Col, tile.Row)
			}
			if tile.Checked || tile.Matched {
				return fmt.Errorf("%w: tile %d at (%d, %d) has stale scan marks", ErrInvalidOperation, id, col, row)
			}
		}
	}

	if pending := s.entityManager.PendingDestroyCount(); pending != 0 {
		return fmt.Errorf("%w: %d destroyed entities not cleaned up", ErrInvalidOperation, pending)
	}
	if want := s.TileCount() + 1; s.entityManager.EntityCount() != want {
		return fmt.Errorf("%w: %d entities for %d tiles", ErrInvalidOperation, s.entityManager.EntityCount(), s.TileCount())
	}
	return nil
}

// Dump 以调色板 key 输出棋盘，从最上面一行开始，空格子为 "."
// 输出格式与配置中的 layout 相同
func (s *GridSystem) Dump() []string {
	lines := make([]string, 0, s.Rows())
	for row := s.Rows() - 1; row >= 0; row-- {
		var sb strings.Builder
		for col := 0; col < s.Columns(); col++ {
			tile := s.tileAt(col, row)
			if tile == nil {
				sb.WriteString(config.EmptySlotKey)
				continue
			}
			sb.WriteString(s.config.KeyForColor(tile.Color))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// String 返回多行文本形式的棋盘
func (s *GridSystem) String() string {
	return strings.Join(s.Dump(), "\n")
}
