package systems

import (
	"strings"
	"testing"

	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
)

// newTestBoard 按布局创建测试棋盘（布局从最上面一行开始）
func newTestBoard(t *testing.T, layout ...string) (*ecs.EntityManager, *GridSystem, *MatchResolver) {
	t.Helper()

	em := ecs.NewEntityManager()
	grid, err := NewGridSystemFromLayout(em, config.DefaultBoardConfig(), nil, layout...)
	if err != nil {
		t.Fatalf("failed to create board from layout %v: %v", layout, err)
	}
	return em, grid, NewMatchResolver(em, grid)
}

// assertLayout 断言棋盘内容
func assertLayout(t *testing.T, grid *GridSystem, expected ...string) {
	t.Helper()

	got := grid.Dump()
	if strings.Join(got, "\n") != strings.Join(expected, "\n") {
		t.Errorf("unexpected board:\n got:\n%s\n want:\n%s", strings.Join(got, "\n"), strings.Join(expected, "\n"))
	}
}

// assertStable 断言结算后的不变量
func assertStable(t *testing.T, grid *GridSystem) {
	t.Helper()

	if err := grid.CheckConsistency(); err != nil {
		t.Errorf("grid inconsistent: %v\n%s", err, grid)
	}
	if grid.HasFloatingTiles() {
		t.Errorf("board has floating tiles:\n%s", grid)
	}
	if run := grid.LongestHorizontalRun(); run >= config.DefaultMinMatchLength {
		t.Errorf("board still has a horizontal run of %d:\n%s", run, grid)
	}
}

// recordingObserver 记录观察者回调
type recordingObserver struct {
	moved   []ecs.EntityID
	removed []ecs.EntityID
	onMove  func(id ecs.EntityID, tile *components.TileComponent)
}

func (o *recordingObserver) OnTileMoved(id ecs.EntityID, tile *components.TileComponent) {
	o.moved = append(o.moved, id)
	if o.onMove != nil {
		o.onMove(id, tile)
	}
}

func (o *recordingObserver) OnTileRemoved(id ecs.EntityID, _ *components.TileComponent) {
	o.removed = append(o.removed, id)
}
