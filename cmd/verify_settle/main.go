// verify_settle 无界面的棋盘结算验证工具
//
// 用随机种子反复建盘、随机激活方块，每次激活后校验：
//   - 网格与方块坐标一致
//   - 没有悬空方块
//   - 没有 ≥3 的横向同色连线
//   - 结算结束后棋盘不再处于 busy 状态
//
// 用法:
//
//	go run ./cmd/verify_settle -config data/board.yaml -runs 50 -seed 1
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/entities"
	"github.com/decker502/tilematch/pkg/systems"
)

var (
	configPath  = flag.String("config", "data/board.yaml", "棋盘配置文件路径（为空时使用默认配置）")
	runs        = flag.Int("runs", 20, "建盘次数")
	activations = flag.Int("activations", 30, "每盘最多激活次数")
	seed        = flag.Int64("seed", 1, "起始随机种子")
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
)

// summary 验证统计
type summary struct {
	Boards      int
	Activations int
	Cascades    int
	Removed     int
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultBoardConfig()
	if *configPath != "" {
		loaded, err := config.LoadBoardConfig(*configPath)
		if err != nil {
			fmt.Printf("❌ 配置加载失败: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	result, err := verify(cfg, *runs, *activations, *seed)
	if err != nil {
		fmt.Printf("❌ 验证失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %d 盘 / %d 次激活全部通过\n", result.Boards, result.Activations)
	fmt.Printf("✅ 连锁轮数: %d，移除方块: %d\n", result.Cascades, result.Removed)
}

// verify 依次使用 seed, seed+1, ... 建盘并随机激活
func verify(cfg *config.BoardConfig, runs, activations int, seed int64) (summary, error) {
	var result summary

	for i := 0; i < runs; i++ {
		boardSeed := seed + int64(i)
		rng := rand.New(rand.NewSource(boardSeed))

		em := ecs.NewEntityManager()
		grid, err := systems.NewGridSystem(em, cfg, entities.NewTileEntity, rng)
		if err != nil {
			return result, fmt.Errorf("seed %d: %w", boardSeed, err)
		}
		resolver := systems.NewMatchResolver(em, grid)

		if len(cfg.Layout) > 0 {
			if _, err := resolver.Settle(); err != nil {
				return result, fmt.Errorf("seed %d: settle layout: %w", boardSeed, err)
			}
		}
		if err := checkBoard(grid, resolver); err != nil {
			return result, fmt.Errorf("seed %d: initial board: %w\n%s", boardSeed, err, grid)
		}
		result.Boards++

		for step := 0; step < activations; step++ {
			col, row, ok := pickTile(grid, rng)
			if !ok {
				log.Printf("[verify_settle] seed %d: board empty after %d activations", boardSeed, step)
				break
			}

			report, err := resolver.Activate(col, row)
			if err != nil {
				return result, fmt.Errorf("seed %d step %d: activate (%d, %d): %w", boardSeed, step, col, row, err)
			}
			if err := checkBoard(grid, resolver); err != nil {
				return result, fmt.Errorf("seed %d step %d: after (%d, %d): %w\n%s", boardSeed, step, col, row, err, grid)
			}

			result.Activations++
			result.Cascades += report.Cascades
			result.Removed += report.Removed
		}

		log.Printf("[verify_settle] seed %d done, %d tiles left", boardSeed, grid.TileCount())
	}

	return result, nil
}

// checkBoard 校验一次结算后的稳定状态
func checkBoard(grid *systems.GridSystem, resolver *systems.MatchResolver) error {
	if err := grid.CheckConsistency(); err != nil {
		return err
	}
	if grid.HasFloatingTiles() {
		return errors.New("floating tiles remain")
	}
	if run := grid.LongestHorizontalRun(); run >= config.DefaultMinMatchLength {
		return fmt.Errorf("horizontal run of %d remains", run)
	}
	if resolver.IsBusy() {
		return errors.New("resolver still busy")
	}
	return nil
}

// pickTile 随机选一个非空格子
func pickTile(grid *systems.GridSystem, rng *rand.Rand) (col, row int, ok bool) {
	type slot struct{ col, row int }
	var occupied []slot

	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Columns(); c++ {
			if id, _, err := grid.TileAt(c, r); err == nil && id != 0 {
				occupied = append(occupied, slot{c, r})
			}
		}
	}
	if len(occupied) == 0 {
		return 0, 0, false
	}

	picked := occupied[rng.Intn(len(occupied))]
	return picked.col, picked.row, true
}
