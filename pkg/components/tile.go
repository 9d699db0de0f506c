package components

import "github.com/decker502/tilematch/pkg/types"

// TileComponent 标识一个方块实体
//
// Col/Row 必须始终等于方块所在格子的坐标，由 GridSystem 在移动时维护。
// Checked/Matched 是匹配扫描的临时标记：
//   - Checked: 本次扫描访问过
//   - Matched: 已确认属于一条可消除的连线，本轮将被移除
type TileComponent struct {
	Color types.TileColor // 创建后不可变
	Col   int
	Row   int

	Checked bool
	Matched bool
}
