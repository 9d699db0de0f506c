// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// TileColor 方块颜色
//
// 方块创建后颜色不可变。颜色比较只看 R/G/B 三个通道，
// Alpha 仅用于渲染，不参与消除判定。
type TileColor struct {
	R, G, B, A uint8
}

// Equal 判断两个颜色是否相同（三个通道精确相等，无容差）
func (c TileColor) Equal(other TileColor) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// RGBA 转换为标准库颜色，供渲染使用
func (c TileColor) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// String 返回 "#rrggbb" 形式
func (c TileColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor 解析 "#rrggbb" 或 "#rrggbbaa" 格式的颜色
// 未提供 alpha 时默认为 255
func ParseHexColor(s string) (TileColor, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return TileColor{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return TileColor{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	if len(hex) == 6 {
		return TileColor{
			R: uint8(value >> 16),
			G: uint8(value >> 8),
			B: uint8(value),
			A: 255,
		}, nil
	}

	return TileColor{
		R: uint8(value >> 24),
		G: uint8(value >> 16),
		B: uint8(value >> 8),
		A: uint8(value),
	}, nil
}

// DistinctColors 统计调色板中互不相同的颜色数量（按 Equal 判定）
func DistinctColors(palette []TileColor) int {
	distinct := make([]TileColor, 0, len(palette))
	for _, c := range palette {
		seen := false
		for _, d := range distinct {
			if d.Equal(c) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, c)
		}
	}
	return len(distinct)
}
