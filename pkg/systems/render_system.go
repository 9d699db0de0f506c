package systems

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// tileGap 方块之间的留白（像素）
const tileGap = 2

// statusFontSize 状态栏字号
const statusFontSize = 14

var backgroundColor = color.RGBA{R: 30, G: 30, B: 36, A: 255}

// RenderSystem 绘制棋盘上的方块
//
// 查询同时拥有 TileComponent 和 PositionComponent 的实体，
// 用一张白色方块图按方块颜色着色后绘制。位置是格子左下角的世界坐标，
// 绘制时翻转为屏幕坐标（左上角）。
type RenderSystem struct {
	entityManager *ecs.EntityManager
	cellSize      float64
	screenHeight  float64

	tileImage    *ebiten.Image
	statusFace   *text.GoTextFace
	statusDrawOp text.DrawOptions
}

// NewRenderSystem 创建渲染系统
// 参数:
//   - em: EntityManager 实例
//   - cellSize: 格子的世界尺寸
//   - screenHeight: 逻辑屏幕高度
func NewRenderSystem(em *ecs.EntityManager, cellSize, screenHeight float64) (*RenderSystem, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load status font: %w", err)
	}

	tileSize := int(cellSize) - tileGap*2
	if tileSize < 1 {
		tileSize = 1
	}
	tileImage := ebiten.NewImage(tileSize, tileSize)
	tileImage.Fill(color.White)

	s := &RenderSystem{
		entityManager: em,
		cellSize:      cellSize,
		screenHeight:  screenHeight,
		tileImage:     tileImage,
		statusFace: &text.GoTextFace{
			Source: source,
			Size:   statusFontSize,
		},
	}
	s.statusDrawOp.GeoM.Translate(4, 2)
	s.statusDrawOp.ColorScale.ScaleWithColor(color.White)
	return s, nil
}

// Draw 清屏并绘制所有方块，返回绘制的方块数
func (s *RenderSystem) Draw(screen *ebiten.Image) int {
	screen.Fill(backgroundColor)

	drawn := 0
	for _, id := range ecs.GetEntitiesWith2[*components.TileComponent, *components.PositionComponent](s.entityManager) {
		tile, _ := ecs.GetComponent[*components.TileComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		x, y := s.tileScreenPosition(pos)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, y)
		op.ColorScale.ScaleWithColor(tile.Color.RGBA())
		screen.DrawImage(s.tileImage, op)
		drawn++
	}
	return drawn
}

// DrawStatus 在屏幕左上角绘制一行状态文本
func (s *RenderSystem) DrawStatus(screen *ebiten.Image, status string) {
	text.Draw(screen, status, s.statusFace, &s.statusDrawOp)
}

// tileScreenPosition 方块图片左上角的屏幕坐标
func (s *RenderSystem) tileScreenPosition(pos *components.PositionComponent) (x, y float64) {
	// 位置是格子左下角，屏幕上需要左上角
	x, y = utils.WorldToScreen(utils.Vec3{X: pos.X, Y: pos.Y + s.cellSize}, s.screenHeight)
	return x + tileGap, y + tileGap
}
