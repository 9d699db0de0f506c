// Package app 提供三消棋盘的 ebiten 表现层
//
// 该包把棋盘引擎（GridSystem + MatchResolver）接入 ebiten 游戏循环：
// 负责绘制方块、播放下落动画，并把鼠标点击转换为格子激活。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/tilematch/pkg/config"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/entities"
	"github.com/decker502/tilematch/pkg/systems"
	"github.com/decker502/tilematch/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Config 定义应用启动配置
type Config struct {
	// ConfigPath 棋盘配置文件路径，优先级最高
	ConfigPath string
	// ConfigData 内置的 YAML 配置，ConfigPath 为空时使用；两者都为空时使用默认配置
	ConfigData []byte
	// Verbose 启用详细日志输出
	Verbose bool
	// Seed 覆盖配置中的随机种子（0 表示不覆盖）
	Seed int64
}

// App 是棋盘应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	boardConfig *config.BoardConfig
	rng         *rand.Rand

	entityManager *ecs.EntityManager
	grid          *systems.GridSystem
	resolver      *systems.MatchResolver
	tweens        *systems.TweenSystem
	input         *systems.InputSystem
	render        *systems.RenderSystem

	screenWidth  int
	screenHeight int
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	boardConfig, err := loadBoardConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Seed != 0 {
		boardConfig.Seed = cfg.Seed
	}

	seed := boardConfig.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a := &App{
		boardConfig: boardConfig,
		rng:         rand.New(rand.NewSource(seed)),
	}

	// 逻辑屏幕在网格四周各留出与原点相同的边距
	width, height := systems.LayoutFromConfig(boardConfig).WorldSize(boardConfig.Columns, boardConfig.Rows)
	a.screenWidth = int(width + 2*boardConfig.Origin.X)
	a.screenHeight = int(height + 2*boardConfig.Origin.Y)

	if err := a.resetBoard(); err != nil {
		return nil, err
	}

	log.Printf("[App] Board %dx%d ready, screen %dx%d (seed %d)",
		boardConfig.Columns, boardConfig.Rows, a.screenWidth, a.screenHeight, seed)
	return a, nil
}

// loadBoardConfig 按 文件 > 内置数据 > 默认值 的顺序加载棋盘配置
func loadBoardConfig(cfg Config) (*config.BoardConfig, error) {
	switch {
	case cfg.ConfigPath != "":
		loaded, err := config.LoadBoardConfig(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("棋盘配置加载失败: %w", err)
		}
		log.Printf("[Config] 加载棋盘配置: %s", cfg.ConfigPath)
		return loaded, nil
	case len(cfg.ConfigData) > 0:
		loaded, err := config.ParseBoardConfig(cfg.ConfigData)
		if err != nil {
			return nil, fmt.Errorf("内置棋盘配置解析失败: %w", err)
		}
		log.Printf("[Config] 使用内置棋盘配置")
		return loaded, nil
	default:
		return config.DefaultBoardConfig(), nil
	}
}

// resetBoard 重建实体管理器、棋盘和所有系统
func (a *App) resetBoard() error {
	em := ecs.NewEntityManager()
	layout := systems.LayoutFromConfig(a.boardConfig)

	grid, err := systems.NewGridSystem(em, a.boardConfig, entities.NewTileFactory(layout), a.rng)
	if err != nil {
		return fmt.Errorf("棋盘创建失败: %w", err)
	}

	tweens := systems.NewTweenSystem(em, layout, a.boardConfig.MoveDuration)
	if easing, ok := utils.EasingByName(a.boardConfig.MoveEasing); ok {
		tweens.SetEasing(easing)
	}
	grid.AddObserver(tweens)

	resolver := systems.NewMatchResolver(em, grid)
	// 预设布局可能带有悬空方块或现成的连线
	if len(a.boardConfig.Layout) > 0 {
		if _, err := resolver.Settle(); err != nil {
			return fmt.Errorf("预设布局结算失败: %w", err)
		}
	}

	render, err := systems.NewRenderSystem(em, a.boardConfig.CellSize, float64(a.screenHeight))
	if err != nil {
		return fmt.Errorf("渲染系统创建失败: %w", err)
	}

	a.entityManager = em
	a.grid = grid
	a.resolver = resolver
	a.tweens = tweens
	a.input = systems.NewInputSystem(grid, resolver, tweens, float64(a.screenHeight))
	a.render = render
	return nil
}

// ScreenSize 返回逻辑屏幕尺寸
func (a *App) ScreenSize() (int, int) {
	return a.screenWidth, a.screenHeight
}

// Update 更新游戏逻辑
func (a *App) Update() error {
	a.tweens.Update(1.0 / float64(ebiten.TPS()))

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		log.Printf("[App] Resetting board")
		return a.resetBoard()
	}

	a.input.Update()
	return nil
}

// Draw 绘制棋盘和状态栏
func (a *App) Draw(screen *ebiten.Image) {
	a.render.Draw(screen)

	last := a.input.LastReport()
	a.render.DrawStatus(screen, fmt.Sprintf("tiles: %d  activations: %d  last: %d cascades / %d removed  [R] reset",
		a.grid.TileCount(), a.input.Activations(), last.Cascades, last.Removed))
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.screenWidth, a.screenHeight
}
