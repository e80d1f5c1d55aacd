package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"shop-api/internal/config"
	"shop-api/internal/repo/imagekit"
	"shop-api/internal/repo/mongodb"
	"shop-api/internal/server"
	"shop-api/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,
			newPublisher,

			imagekit.NewClient,

			mongodb.NewProductRepository,
			mongodb.NewShopRepository,
			mongodb.NewUserRepository,

			usecase.NewProductUsecase,

			server.NewController,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}
