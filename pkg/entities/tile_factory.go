package entities

import (
	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/types"
	"github.com/decker502/tilematch/pkg/utils"
)

// TileFactory 方块创建工厂
// GridSystem 在初始填充时调用，表现层可以借此为方块附加渲染所需的组件
type TileFactory func(manager *ecs.EntityManager, color types.TileColor, col, row int) ecs.EntityID

// NewTileEntity 创建一个只包含逻辑数据的方块实体
// 参数:
//   - manager: EntityManager 实例
//   - color: 方块颜色
//   - col, row: 初始所在格子
//
// 返回: 创建的实体ID
func NewTileEntity(manager *ecs.EntityManager, color types.TileColor, col, row int) ecs.EntityID {
	id := manager.CreateEntity()

	manager.AddComponent(id, &components.TileComponent{
		Color: color,
		Col:   col,
		Row:   row,
	})

	return id
}

// NewTileFactory 返回一个同时附加位置组件的工厂
// 方块初始位置为所在格子的世界坐标
func NewTileFactory(layout utils.GridLayout) TileFactory {
	return func(manager *ecs.EntityManager, color types.TileColor, col, row int) ecs.EntityID {
		id := NewTileEntity(manager, color, col, row)

		world := layout.GridToWorld(col, row)
		manager.AddComponent(id, &components.PositionComponent{
			X: world.X,
			Y: world.Y,
		})

		return id
	}
}
