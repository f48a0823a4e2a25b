package main

import (
	"embed"
	"log"

	"readerdesk/internal/app"
	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/paths"
	"readerdesk/internal/window"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dirs, err := paths.Resolve()
	if err != nil {
		log.Fatal(err)
	}
	if err := dirs.Ensure(); err != nil {
		log.Fatal(err)
	}

	appLogger, closer, err := logging.NewFileLogger(logging.DefaultFileOptions(dirs.Logs))
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()
	errors.SetDefaultRetryLogger(appLogger)

	// Window size must be known before the window exists
	cfg, err := config.NewManager(dirs.ConfigFile(), appLogger).Load()
	if err != nil {
		logging.LogError(appLogger, err, "load_config", nil)
		cfg = &config.ReaderConfig{}
	}
	width, height, _ := window.InitialSize(cfg)

	logLevel := logger.INFO
	if cfg.DebugEnabled() {
		logLevel = logger.DEBUG
	}

	application := app.NewApp(dirs, appLogger)

	err = wails.Run(&options.App{
		Title:            "Reader",
		Width:            width,
		Height:           height,
		MinWidth:         400,
		MinHeight:        300,
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:           logging.NewWailsLoggerAdapter(appLogger, cfg.DebugEnabled()),
		LogLevel:         logLevel,
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			ZoomFactor: 1.0,
		},
		Mac: &mac.Options{
			TitleBar: mac.TitleBarDefault(),
			About: &mac.AboutInfo{
				Title:   "Reader",
				Message: "Desktop shell for the reader server",
			},
		},
	})

	if err != nil {
		appLogger.Error("Application exited with error", "error", err.Error())
		closer.Close()
		log.Fatal(err)
	}
}
