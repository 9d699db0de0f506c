package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
)

// TestActivateCompletesRow 激活中间方块，上方方块落下组成 RRR 后整行清空
func TestActivateCompletesRow(t *testing.T) {
	em, grid, resolver := newTestBoard(t,
		".R.",
		"RBR",
	)

	report, err := resolver.Activate(1, 0)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	assertLayout(t, grid, "...", "...")
	if report.Cascades != 1 || report.Removed != 4 {
		t.Errorf("unexpected report: %+v", report)
	}
	if resolver.IsBusy() {
		t.Error("resolver should be idle after settling")
	}
	// 只剩网格实体
	if em.EntityCount() != 1 {
		t.Errorf("expected only the grid entity to remain, got %d entities", em.EntityCount())
	}
}

// TestSettleClearsSingleRow 1x3 的 [R, R, R] 结算后整行为空
func TestSettleClearsSingleRow(t *testing.T) {
	_, grid, resolver := newTestBoard(t, "RRR")

	report, err := resolver.Settle()
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, "...")
	if report.Removed != 3 || report.Cascades != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if resolver.IsBusy() {
		t.Error("busy flag should be cleared")
	}
}

// TestActivateFullWidthMatch 整行 5 个同色全部消除，而不是只消除 3 个
func TestActivateFullWidthMatch(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		"..R..",
		"RRGRR",
	)

	report, err := resolver.Activate(2, 0)
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, ".....", ".....")
	if report.Removed != 6 {
		t.Errorf("expected activated tile plus 5 matched, got %d removed", report.Removed)
	}
}

// TestActivateCascade 第一轮消除后方块下落形成第二轮匹配
func TestActivateCascade(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		".G..",
		"YRG.",
		"RBRG",
	)

	report, err := resolver.Activate(1, 0)
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, "....", "....", "Y...")
	expected := SettleReport{Cascades: 2, Removed: 7, Moves: 5}
	if report != expected {
		t.Errorf("report = %+v, want %+v", report, expected)
	}
	assertStable(t, grid)
}

// TestActivateDirectRemovalWithoutMatch 列 [R, B, R] 移除 B 后上下两个 R 相邻，但竖直方向不消除
func TestActivateDirectRemovalWithoutMatch(t *testing.T) {
	_, grid, resolver := newTestBoard(t, "R", "B", "R")

	report, err := resolver.Activate(0, 1)
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, ".", "R", "R")
	if report.Cascades != 0 || report.Removed != 1 || report.Moves != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

// TestVerticalRunsAreNotMatched 竖直方向的三连不会被消除
func TestVerticalRunsAreNotMatched(t *testing.T) {
	_, grid, resolver := newTestBoard(t, "R", "R", "R", "B")

	if _, err := resolver.Activate(0, 0); err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, ".", "R", "R", "R")
}

// TestMatchedTilesInOtherRowsSurvive 只有连线中的方块被移除
func TestMatchedTilesInOtherRowsSurvive(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		"GYBG",
		"RRRB",
	)

	if _, err := resolver.Settle(); err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, "...G", "GYBB")
	assertStable(t, grid)
}

// TestSettleStableBoardMakesNoMutations 已稳定棋盘的结算不做任何修改
func TestSettleStableBoardMakesNoMutations(t *testing.T) {
	em, grid, resolver := newTestBoard(t,
		"RGB",
		"GBR",
	)
	observer := &recordingObserver{}
	grid.AddObserver(observer)
	entitiesBefore := em.EntityCount()

	report, err := resolver.Settle()
	if err != nil {
		t.Fatal(err)
	}

	if report != (SettleReport{}) {
		t.Errorf("expected empty report, got %+v", report)
	}
	if len(observer.moved) != 0 || len(observer.removed) != 0 {
		t.Errorf("expected no callbacks, got moved=%v removed=%v", observer.moved, observer.removed)
	}
	assertLayout(t, grid, "RGB", "GBR")
	if em.EntityCount() != entitiesBefore {
		t.Errorf("entity count changed from %d to %d", entitiesBefore, em.EntityCount())
	}
	if resolver.IsBusy() {
		t.Error("resolver should return to idle")
	}
}

// TestSettleDropsFloatingLayout 预设布局的悬空方块先落下再结算
func TestSettleDropsFloatingLayout(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		"R.R",
		"...",
		".R.",
	)

	report, err := resolver.Settle()
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, "...", "...", "...")
	if report.Cascades != 1 || report.Removed != 3 || report.Moves != 4 {
		t.Errorf("unexpected report: %+v", report)
	}
}

// TestActivateDropsFloatingLayoutTiles 未先 Settle 的预设布局在激活时也会落到底
func TestActivateDropsFloatingLayoutTiles(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		"G.",
		"..",
		"RB",
	)

	report, err := resolver.Activate(1, 0)
	if err != nil {
		t.Fatal(err)
	}

	assertLayout(t, grid, "..", "G.", "R.")
	expected := SettleReport{Removed: 1, Moves: 1}
	if report != expected {
		t.Errorf("report = %+v, want %+v", report, expected)
	}
	assertStable(t, grid)
}

// TestActivateRejectedWhileBusy 结算中激活被拒绝，网格不变
func TestActivateRejectedWhileBusy(t *testing.T) {
	em, grid, resolver := newTestBoard(t,
		".R.",
		"RBR",
	)

	resolver.busy.Store(true)
	_, err := resolver.Activate(1, 0)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := resolver.Settle(); !errors.Is(err, ErrBusy) {
		t.Errorf("Settle while busy: expected ErrBusy, got %v", err)
	}

	assertLayout(t, grid, ".R.", "RBR")
	if em.PendingDestroyCount() != 0 {
		t.Error("rejected activation must not mark entities for destruction")
	}

	// 释放后可以正常激活
	resolver.busy.Store(false)
	if _, err := resolver.Activate(1, 0); err != nil {
		t.Errorf("activation after busy cleared failed: %v", err)
	}
}

// TestObserverRunsWhileBusy 回调期间 IsBusy 为 true，重入激活被拒绝
func TestObserverRunsWhileBusy(t *testing.T) {
	_, grid, resolver := newTestBoard(t,
		"Y",
		"G",
		"R",
	)

	var reentrantErr error
	busyDuringCallback := false
	observer := &recordingObserver{
		onMove: func(id ecs.EntityID, tile *components.TileComponent) {
			busyDuringCallback = resolver.IsBusy()
			_, reentrantErr = resolver.Activate(0, tile.Row)
		},
	}
	grid.AddObserver(observer)

	if _, err := resolver.Activate(0, 0); err != nil {
		t.Fatal(err)
	}

	if !busyDuringCallback {
		t.Error("IsBusy should be true inside observer callbacks")
	}
	if !errors.Is(reentrantErr, ErrBusy) {
		t.Errorf("re-entrant activation should be rejected with ErrBusy, got %v", reentrantErr)
	}
	if len(observer.moved) != 2 {
		t.Errorf("expected 2 move callbacks, got %d", len(observer.moved))
	}
	assertLayout(t, grid, ".", "Y", "G")
}

// TestActivateRejectsBadPositions 测试越界和空格子
func TestActivateRejectsBadPositions(t *testing.T) {
	tests := []struct {
		name     string
		col, row int
		wantErr  error
	}{
		{"负列", -1, 0, ErrOutOfBounds},
		{"列越界", 3, 0, ErrOutOfBounds},
		{"行越界", 0, 2, ErrOutOfBounds},
		{"空格子", 0, 1, ErrInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, grid, resolver := newTestBoard(t, ".R.", "RBR")

			_, err := resolver.Activate(tt.col, tt.row)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Activate(%d, %d): expected %v, got %v", tt.col, tt.row, tt.wantErr, err)
			}
			if resolver.IsBusy() {
				t.Error("rejected activation must leave the resolver idle")
			}
			assertLayout(t, grid, ".R.", "RBR")
		})
	}
}

// TestRandomActivationsKeepInvariants 随机激活直到棋盘清空，每一步都检查不变量
func TestRandomActivationsKeepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 15; seed++ {
		em := ecs.NewEntityManager()
		cfg := config.DefaultBoardConfig()
		cfg.Columns, cfg.Rows = 6, 6
		cfg.Palette = cfg.Palette[:3] // 颜色少更容易连锁
		rng := rand.New(rand.NewSource(seed))

		grid, err := NewGridSystem(em, cfg, nil, rng)
		if err != nil {
			t.Fatal(err)
		}
		resolver := NewMatchResolver(em, grid)
		assertStable(t, grid)

		for step := 0; step < 200 && grid.TileCount() > 0; step++ {
			col, row := pickOccupied(grid, rng)
			before := grid.TileCount()

			report, err := resolver.Activate(col, row)
			if err != nil {
				t.Fatalf("seed %d step %d: Activate(%d, %d) failed: %v", seed, step, col, row, err)
			}

			if before-grid.TileCount() != report.Removed {
				t.Fatalf("seed %d step %d: report says %d removed, board lost %d",
					seed, step, report.Removed, before-grid.TileCount())
			}
			if em.EntityCount() != grid.TileCount()+1 {
				t.Fatalf("seed %d step %d: %d entities for %d tiles", seed, step, em.EntityCount(), grid.TileCount())
			}
			if resolver.IsBusy() {
				t.Fatalf("seed %d step %d: resolver still busy", seed, step)
			}
			assertStable(t, grid)
		}

		if grid.TileCount() != 0 {
			t.Errorf("seed %d: board should be empty after enough activations, %d tiles left", seed, grid.TileCount())
		}
	}
}

// pickOccupied 随机选取一个非空格子
func pickOccupied(grid *GridSystem, rng *rand.Rand) (int, int) {
	type slot struct{ col, row int }
	occupied := make([]slot, 0, grid.Columns()*grid.Rows())
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Columns(); col++ {
			if id, _, _ := grid.TileAt(col, row); id != 0 {
				occupied = append(occupied, slot{col, row})
			}
		}
	}
	s := occupied[rng.Intn(len(occupied))]
	return s.col, s.row
}

// BenchmarkActivate 在 8x8 随机棋盘上激活底行方块
func BenchmarkActivate(b *testing.B) {
	cfg := config.DefaultBoardConfig()
	cfg.Palette = cfg.Palette[:3]

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		em := ecs.NewEntityManager()
		grid, err := NewGridSystem(em, cfg, nil, rand.New(rand.NewSource(int64(i+1))))
		if err != nil {
			b.Fatal(err)
		}
		resolver := NewMatchResolver(em, grid)
		b.StartTimer()

		if _, err := resolver.Activate(i%cfg.Columns, 0); err != nil {
			b.Fatal(err)
		}
	}
}
