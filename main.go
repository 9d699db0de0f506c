package main

import (
	"flag"
	"log"

	"github.com/decker502/tilematch/pkg/app"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	configPath = flag.String("config", "", "棋盘配置文件路径（为空时使用内置 data/board.yaml）")
	verbose    = flag.Bool("verbose", false, "详细日志")
	seed       = flag.Int64("seed", 0, "随机种子（0 表示使用配置或当前时间）")
)

func main() {
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	}

	application, err := app.NewApp(app.Config{
		ConfigPath: *configPath,
		ConfigData: defaultBoardYAML,
		Verbose:    *verbose,
		Seed:       *seed,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	width, height := application.ScreenSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Tile Match")

	if err := ebiten.RunGame(application); err != nil {
		log.Fatal(err)
	}
}
