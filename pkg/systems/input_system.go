package systems

import (
	"errors"
	"log"

	"github.com/decker502/tilematch/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputSystem 把鼠标点击转换为格子激活
//
// 结算进行中（MatchResolver.IsBusy）或下落动画未播完时点击直接忽略，
// 点到网格外也忽略。被拒绝的点击只记录日志，不会向上层返回错误。
type InputSystem struct {
	grid         *GridSystem
	resolver     *MatchResolver
	tweens       *TweenSystem // 可为 nil（无动画）
	screenHeight float64

	lastReport  SettleReport
	activations int
}

// NewInputSystem 创建输入系统
// 参数:
//   - grid: 棋盘系统（用于屏幕坐标 → 格子）
//   - resolver: 匹配结算器
//   - tweens: 补间动画系统，nil 表示不等待动画
//   - screenHeight: 逻辑屏幕高度（屏幕 y 轴向下，世界 y 轴向上）
func NewInputSystem(grid *GridSystem, resolver *MatchResolver, tweens *TweenSystem, screenHeight float64) *InputSystem {
	return &InputSystem{
		grid:         grid,
		resolver:     resolver,
		tweens:       tweens,
		screenHeight: screenHeight,
	}
}

// Update 每帧检测鼠标左键点击
func (s *InputSystem) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		s.HandleClick(x, y)
	}
}

// HandleClick 处理一次屏幕坐标的点击
//
// 返回是否真正执行了一次激活。
func (s *InputSystem) HandleClick(screenX, screenY int) bool {
	if s.resolver.IsBusy() {
		return false
	}
	if s.tweens != nil && s.tweens.IsAnimating() {
		return false
	}

	world := utils.ScreenToWorld(screenX, screenY, s.screenHeight)
	col, row, ok := s.grid.WorldToGrid(world)
	if !ok {
		return false
	}

	report, err := s.resolver.Activate(col, row)
	switch {
	case err == nil:
		s.lastReport = report
		s.activations++
		return true
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrBusy):
		log.Printf("[InputSystem] Click on (%d, %d) ignored: %v", col, row, err)
	default:
		log.Printf("[InputSystem] Warning: activation failed: %v", err)
	}
	return false
}

// LastReport 返回最近一次成功激活的结算统计
func (s *InputSystem) LastReport() SettleReport {
	return s.lastReport
}

// Activations 返回成功激活的次数
func (s *InputSystem) Activations() int {
	return s.activations
}
