package utils

import "math"

// Vec3 世界坐标点
// 世界坐标系 y 轴向上，z 仅透传给渲染层
type Vec3 struct {
	X, Y, Z float64
}

// GridLayout 描述网格在世界坐标中的摆放方式
//
// Origin 是第 0 列第 0 行格子左下角的世界坐标，
// 第 col 列第 row 行格子的左下角为 Origin + (col, row) * CellSize。
type GridLayout struct {
	Origin   Vec3
	CellSize float64
}

// GridToWorld 将网格坐标转换为格子左下角的世界坐标
// 纯函数，不做边界检查
func (l GridLayout) GridToWorld(col, row int) Vec3 {
	return Vec3{
		X: l.Origin.X + float64(col)*l.CellSize,
		Y: l.Origin.Y + float64(row)*l.CellSize,
		Z: l.Origin.Z,
	}
}

// WorldToGrid 将世界坐标转换为网格坐标
// 参数:
//   - point: 世界坐标
//   - columns, rows: 网格尺寸
//
// 返回:
//   - col, row: 网格坐标
//   - isValid: 是否落在网格范围内（越界时不会被钳制到边缘）
func (l GridLayout) WorldToGrid(point Vec3, columns, rows int) (col, row int, isValid bool) {
	if l.CellSize <= 0 {
		return 0, 0, false
	}

	// 使用 Floor 保证原点左下方的负坐标不会被截断为 0
	col = int(math.Floor((point.X - l.Origin.X) / l.CellSize))
	row = int(math.Floor((point.Y - l.Origin.Y) / l.CellSize))

	if col < 0 || col >= columns || row < 0 || row >= rows {
		return col, row, false
	}
	return col, row, true
}

// WorldSize 返回整个网格覆盖的世界尺寸
func (l GridLayout) WorldSize(columns, rows int) (width, height float64) {
	return float64(columns) * l.CellSize, float64(rows) * l.CellSize
}

// WorldToScreen 将世界坐标转换为屏幕坐标（屏幕 y 轴向下）
// screenHeight 为逻辑屏幕高度
func WorldToScreen(p Vec3, screenHeight float64) (screenX, screenY float64) {
	return p.X, screenHeight - p.Y
}

// ScreenToWorld 将屏幕坐标（如鼠标位置）转换为世界坐标
func ScreenToWorld(screenX, screenY int, screenHeight float64) Vec3 {
	return Vec3{X: float64(screenX), Y: screenHeight - float64(screenY)}
}
