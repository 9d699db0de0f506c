package utils

import (
	"math"
	"testing"
)

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3 = 0.875
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}

	t.Run("开始快于线性", func(t *testing.T) {
		for p := 0.1; p < 0.5; p += 0.1 {
			if EaseOutCubic(p) <= EaseLinear(p) {
				t.Errorf("EaseOutCubic(%v) 应该大于线性值 %v", p, EaseLinear(p))
			}
		}
	})
}

// TestEaseOutQuad 测试二次方缓出函数
func TestEaseOutQuad(t *testing.T) {
	if got := EaseOutQuad(0.5); math.Abs(got-0.75) > 0.001 {
		t.Errorf("EaseOutQuad(0.5) = %v, 期望 0.75", got)
	}
	if EaseOutQuad(0) != 0 || EaseOutQuad(1) != 1 {
		t.Error("EaseOutQuad 端点应为 0 和 1")
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		name     string
		a, b, t  float64
		expected float64
	}{
		{"起点", 100, 200, 0, 100},
		{"终点", 100, 200, 1, 200},
		{"中点", 100, 200, 0.5, 150},
		{"反向", 200, 100, 0.25, 175},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Lerp(%v, %v, %v) = %v, 期望 %v", tt.a, tt.b, tt.t, got, tt.expected)
			}
		})
	}
}

// TestClamp01 测试进度裁剪
func TestClamp01(t *testing.T) {
	if Clamp01(-0.5) != 0 || Clamp01(1.5) != 1 || Clamp01(0.3) != 0.3 {
		t.Error("Clamp01 应将值限制在 [0, 1]")
	}
}

// TestEasingByName 测试按名字查找缓动函数
func TestEasingByName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64 // f(0.5)
		wantOK bool
	}{
		{"空字符串使用默认", "", 0.875, true},
		{"线性", "linear", 0.5, true},
		{"二次方", "outQuad", 0.75, true},
		{"未知名字", "bounce", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := EasingByName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("EasingByName(%q) ok = %v, 期望 %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := fn(0.5); math.Abs(got-tt.want) > 0.001 {
				t.Errorf("EasingByName(%q)(0.5) = %v, 期望 %v", tt.input, got, tt.want)
			}
		})
	}
}
