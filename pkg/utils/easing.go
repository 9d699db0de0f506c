package utils

import "math"

// Easing Functions (缓动函数)
//
// 缓动函数用于控制方块下落动画的速度曲线。
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
//
// 参考：https://easings.net/

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢（方块落位默认使用）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseOutQuad 二次方缓出
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EasingFunc 缓动函数类型
type EasingFunc func(t float64) float64

// DefaultEasing 配置未指定时使用的缓动函数名
const DefaultEasing = "outCubic"

var easingByName = map[string]EasingFunc{
	"linear":   EaseLinear,
	"outCubic": EaseOutCubic,
	"outQuad":  EaseOutQuad,
}

// EasingByName 按配置中的名字查找缓动函数，空字符串返回默认值
func EasingByName(name string) (EasingFunc, bool) {
	if name == "" {
		name = DefaultEasing
	}
	fn, ok := easingByName[name]
	return fn, ok
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将 t 限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
