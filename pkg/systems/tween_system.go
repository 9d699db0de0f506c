package systems

import (
	"github.com/decker502/tilematch/pkg/components"
	"github.com/decker502/tilematch/pkg/ecs"
	"github.com/decker502/tilematch/pkg/utils"
)

// TweenSystem 方块移动补间动画
//
// 作为 BoardObserver 注册到 GridSystem：方块换格子后，从当前位置
// 缓动到新格子的世界坐标。动画只影响 PositionComponent，与逻辑坐标无关。
type TweenSystem struct {
	entityManager *ecs.EntityManager
	layout        utils.GridLayout
	duration      float64
	easing        utils.EasingFunc
}

// NewTweenSystem 创建补间动画系统
// 参数:
//   - em: EntityManager 实例
//   - layout: 网格世界坐标摆放方式
//   - duration: 动画时长（秒），<= 0 时方块直接瞬移
func NewTweenSystem(em *ecs.EntityManager, layout utils.GridLayout, duration float64) *TweenSystem {
	return &TweenSystem{
		entityManager: em,
		layout:        layout,
		duration:      duration,
		easing:        utils.EaseOutCubic,
	}
}

// SetEasing 替换缓动函数，nil 时保持不变
func (s *TweenSystem) SetEasing(easing utils.EasingFunc) {
	if easing != nil {
		s.easing = easing
	}
}

// OnTileMoved 为移动的方块添加补间动画（覆盖尚未播完的旧动画）
func (s *TweenSystem) OnTileMoved(id ecs.EntityID, tile *components.TileComponent) {
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	if !ok {
		return
	}

	target := s.layout.GridToWorld(tile.Col, tile.Row)
	if s.duration <= 0 {
		pos.X, pos.Y = target.X, target.Y
		return
	}

	s.entityManager.AddComponent(id, &components.TweenComponent{
		FromX:    pos.X,
		FromY:    pos.Y,
		ToX:      target.X,
		ToY:      target.Y,
		Duration: s.duration,
	})
}

// OnTileRemoved 被移除的方块不再播放动画
func (s *TweenSystem) OnTileRemoved(id ecs.EntityID, _ *components.TileComponent) {
	ecs.RemoveComponent[*components.TweenComponent](s.entityManager, id)
}

// Update 推进所有补间动画
// dt 为距上一帧的时间（秒）
func (s *TweenSystem) Update(dt float64) {
	for _, id := range ecs.GetEntitiesWith2[*components.TweenComponent, *components.PositionComponent](s.entityManager) {
		tween, _ := ecs.GetComponent[*components.TweenComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		tween.Elapsed += dt
		progress := 1.0
		if tween.Duration > 0 {
			progress = utils.Clamp01(tween.Elapsed / tween.Duration)
		}

		eased := s.easing(progress)
		pos.X = utils.Lerp(tween.FromX, tween.ToX, eased)
		pos.Y = utils.Lerp(tween.FromY, tween.ToY, eased)

		if progress >= 1 {
			pos.X, pos.Y = tween.ToX, tween.ToY
			ecs.RemoveComponent[*components.TweenComponent](s.entityManager, id)
		}
	}
}

// IsAnimating 是否还有未播完的动画
func (s *TweenSystem) IsAnimating() bool {
	return len(ecs.GetEntitiesWith1[*components.TweenComponent](s.entityManager)) > 0
}
