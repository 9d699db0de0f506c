package systems

import (
	"errors"

	"github.com/decker502/tilematch/pkg/config"
)

// 棋盘引擎错误
// 调用者使用 errors.Is 判断类型，这些错误都不会在内部重试
var (
	// ErrOutOfBounds 坐标超出网格范围（调用方错误，不做钳制）
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidOperation 对空格子做结构修改，或网格处于不一致状态
	ErrInvalidOperation = errors.New("invalid grid operation")

	// ErrConfiguration 配置无法满足创建约束（如调色板颜色不足）
	// 与 config.ErrInvalidConfig 是同一个哨兵错误
	ErrConfiguration = config.ErrInvalidConfig

	// ErrBusy 棋盘正在结算中，拒绝新的激活
	ErrBusy = errors.New("board is busy")
)
