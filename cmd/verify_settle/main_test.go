package main

import (
	"testing"

	"github.com/decker502/tilematch/pkg/config"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.BoardConfig
	}{
		{"默认 8x8 棋盘", config.DefaultBoardConfig()},
		{"预设布局需要先结算", config.DefaultBoardConfig().WithLayout(
			"R...",
			"RRBB",
			"GGRY",
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := verify(tt.cfg, 3, 10, 42)
			if err != nil {
				t.Fatalf("verify() error = %v", err)
			}
			if result.Boards != 3 {
				t.Errorf("Boards = %d, want 3", result.Boards)
			}
			if result.Activations == 0 {
				t.Error("expected at least one activation")
			}
		})
	}
}
