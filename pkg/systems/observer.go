package systems

import (
	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/ecs"
)

// BoardObserver 表现层回调
//
// 回调在结算过程中同步调用，此时 MatchResolver.IsBusy() 为 true。
// 实现者不应在回调中修改网格。
type BoardObserver interface {
	// OnTileMoved 方块的 Col/Row 改变后调用
	OnTileMoved(id ecs.EntityID, tile *components.TileComponent)

	// OnTileRemoved 方块从格子中移除、实体被标记删除前调用
	OnTileRemoved(id ecs.EntityID, tile *components.TileComponent)
}
