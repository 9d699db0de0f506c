package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/decker502/tilematch/pkg/types"
	"github.com/decker502/tilematch/pkg/utils"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 表示棋盘配置无法满足约束
// 例如调色板颜色不足以避免横向相邻同色
var ErrInvalidConfig = errors.New("invalid board configuration")

// DefaultMinMatchLength 消除所需的最少连续同色方块数（固定为 3）
const DefaultMinMatchLength = 3

// EmptySlotKey 布局中表示空格子的字符
const EmptySlotKey = "."

// BoardConfig 棋盘配置
//
// 配置文件位置: data/board.yaml
type BoardConfig struct {
	// Columns 列数（> 0）
	Columns int `yaml:"columns"`

	// Rows 行数（> 0）
	Rows int `yaml:"rows"`

	// MinMatchLength 最少消除长度，固定为 3，省略时取默认值
	MinMatchLength int `yaml:"minMatchLength"`

	// Palette 调色板，至少需要两种不同颜色
	Palette []PaletteEntry `yaml:"palette"`

	// Origin 网格原点（第 0 列第 0 行格子左下角）的世界坐标
	Origin OriginConfig `yaml:"origin"`

	// CellSize 每个格子的世界尺寸
	CellSize float64 `yaml:"cellSize"`

	// MoveDuration 方块下落动画时长（秒），0 表示瞬移
	MoveDuration float64 `yaml:"moveDuration"`

	// MoveEasing 下落动画缓动函数：linear、outQuad、outCubic（默认）
	MoveEasing string `yaml:"moveEasing"`

	// Seed 随机种子，0 表示使用当前时间
	Seed int64 `yaml:"seed"`

	// Layout 预设布局（可选），从最上面一行开始，每个字符是调色板 key，"." 为空
	Layout []string `yaml:"layout"`
}

// PaletteEntry 调色板条目
type PaletteEntry struct {
	Name  string `yaml:"name"`
	Key   string `yaml:"key"`   // 单字符，用于布局和日志
	Color string `yaml:"color"` // "#rrggbb"
}

// OriginConfig 世界坐标原点
type OriginConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// DefaultBoardConfig 返回内置默认配置（8x8，五种颜色）
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Columns:        8,
		Rows:           8,
		MinMatchLength: DefaultMinMatchLength,
		Palette: []PaletteEntry{
			{Name: "red", Key: "R", Color: "#e53935"},
			{Name: "green", Key: "G", Color: "#43a047"},
			{Name: "blue", Key: "B", Color: "#1e88e5"},
			{Name: "yellow", Key: "Y", Color: "#fdd835"},
			{Name: "purple", Key: "P", Color: "#8e24aa"},
		},
		Origin:       OriginConfig{X: 20, Y: 20},
		CellSize:     64,
		MoveDuration: 0.4,
		MoveEasing:   utils.DefaultEasing,
	}
}

// LoadBoardConfig 加载棋盘配置
//
// 参数:
//   - path: 配置文件路径（如 "data/board.yaml"）
//
// 返回:
//   - *BoardConfig: 加载并校验后的配置
//   - error: 读取、解析或校验失败
func LoadBoardConfig(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board config: %w", err)
	}

	return ParseBoardConfig(data)
}

// ParseBoardConfig 从 YAML 数据解析棋盘配置
func ParseBoardConfig(data []byte) (*BoardConfig, error) {
	var config BoardConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse board config: %w", err)
	}

	if config.MinMatchLength == 0 {
		config.MinMatchLength = DefaultMinMatchLength
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 验证配置有效性
//
// 检查项：
//   - 行列数为正
//   - 最少消除长度固定为 3
//   - 调色板 key 为单字符且唯一，颜色可解析，且至少两种不同颜色
//   - 格子尺寸为正，动画时长非负，缓动函数名已知
//   - 预设布局尺寸与行列数一致，且只使用已知 key
func (c *BoardConfig) Validate() error {
	if c.Columns <= 0 || c.Rows <= 0 {
		return fmt.Errorf("%w: columns and rows must be > 0, got %dx%d", ErrInvalidConfig, c.Columns, c.Rows)
	}

	if c.MinMatchLength != DefaultMinMatchLength {
		return fmt.Errorf("%w: minMatchLength is fixed at %d, got %d", ErrInvalidConfig, DefaultMinMatchLength, c.MinMatchLength)
	}

	keys := make(map[string]bool, len(c.Palette))
	for i, entry := range c.Palette {
		if len(entry.Key) != 1 || entry.Key == EmptySlotKey {
			return fmt.Errorf("%w: palette[%d] key %q must be a single character other than %q",
				ErrInvalidConfig, i, entry.Key, EmptySlotKey)
		}
		if keys[entry.Key] {
			return fmt.Errorf("%w: duplicate palette key %q", ErrInvalidConfig, entry.Key)
		}
		keys[entry.Key] = true
	}

	colors, err := c.Colors()
	if err != nil {
		return err
	}
	if types.DistinctColors(colors) < 2 {
		return fmt.Errorf("%w: palette needs at least 2 distinct colors, got %d",
			ErrInvalidConfig, types.DistinctColors(colors))
	}

	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cellSize must be > 0, got %.2f", ErrInvalidConfig, c.CellSize)
	}
	if c.MoveDuration < 0 {
		return fmt.Errorf("%w: moveDuration must be >= 0, got %.2f", ErrInvalidConfig, c.MoveDuration)
	}
	if _, ok := utils.EasingByName(c.MoveEasing); !ok {
		return fmt.Errorf("%w: unknown moveEasing %q", ErrInvalidConfig, c.MoveEasing)
	}

	return c.validateLayout(keys)
}

// validateLayout 校验预设布局
func (c *BoardConfig) validateLayout(keys map[string]bool) error {
	if len(c.Layout) == 0 {
		return nil
	}

	if len(c.Layout) != c.Rows {
		return fmt.Errorf("%w: layout has %d rows, expected %d", ErrInvalidConfig, len(c.Layout), c.Rows)
	}

	for i, line := range c.Layout {
		if len(line) != c.Columns {
			return fmt.Errorf("%w: layout row %d has %d columns, expected %d",
				ErrInvalidConfig, i, len(line), c.Columns)
		}
		for j := 0; j < len(line); j++ {
			key := line[j : j+1]
			if key != EmptySlotKey && !keys[key] {
				return fmt.Errorf("%w: layout row %d column %d uses unknown key %q",
					ErrInvalidConfig, i, j, key)
			}
		}
	}

	return nil
}

// Colors 按调色板顺序解析所有颜色
func (c *BoardConfig) Colors() ([]types.TileColor, error) {
	colors := make([]types.TileColor, 0, len(c.Palette))
	for i, entry := range c.Palette {
		parsed, err := types.ParseHexColor(entry.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: palette[%d] (%s): %v", ErrInvalidConfig, i, entry.Name, err)
		}
		colors = append(colors, parsed)
	}
	return colors, nil
}

// ColorForKey 根据调色板 key 查找颜色
func (c *BoardConfig) ColorForKey(key string) (types.TileColor, bool) {
	for _, entry := range c.Palette {
		if entry.Key != key {
			continue
		}
		parsed, err := types.ParseHexColor(entry.Color)
		if err != nil {
			return types.TileColor{}, false
		}
		return parsed, true
	}
	return types.TileColor{}, false
}

// KeyForColor 根据颜色反查调色板 key，找不到时返回 "?"
func (c *BoardConfig) KeyForColor(color types.TileColor) string {
	for _, entry := range c.Palette {
		parsed, err := types.ParseHexColor(entry.Color)
		if err != nil {
			continue
		}
		if parsed.Equal(color) {
			return entry.Key
		}
	}
	return "?"
}

// WithLayout 返回一份使用指定布局的配置副本，行列数取自布局
func (c *BoardConfig) WithLayout(layout ...string) *BoardConfig {
	clone := *c
	clone.Palette = append([]PaletteEntry(nil), c.Palette...)
	clone.Layout = append([]string(nil), layout...)
	clone.Rows = len(layout)
	clone.Columns = 0
	if len(layout) > 0 {
		clone.Columns = len(layout[0])
	}
	return &clone
}
