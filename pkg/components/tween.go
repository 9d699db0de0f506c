package components

// TweenComponent 位置补间动画
// 方块移动到新格子后由 TweenSystem 添加，动画结束后移除
type TweenComponent struct {
	FromX, FromY float64
	ToX, ToY     float64
	Elapsed      float64 // 已播放时间（秒）
	Duration     float64 // 总时长（秒）
}
