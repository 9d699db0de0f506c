package components

import "github.com/decker502/tilematch/pkg/ecs"

// BoardGridComponent 标识棋盘网格实体
// 用于跟踪每个格子中的方块
//
// Slots 按行优先存储: index = row*Columns + col，0 表示空格子。
// row 0 是最底行，方块在重力作用下向 row 0 方向下落。
// 尺寸在创建后不再改变。
type BoardGridComponent struct {
	Columns int
	Rows    int
	Slots   []ecs.EntityID
}
