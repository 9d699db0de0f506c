package components

// PositionComponent 实体的世界坐标（格子左下角，y 轴向上）
// 仅供表现层使用，逻辑坐标见 TileComponent.Col/Row
type PositionComponent struct {
	X, Y float64
}
