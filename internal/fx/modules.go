package fx

import (
	"sandlot-scorebook/internal/config"
	"sandlot-scorebook/internal/database"
	"sandlot-scorebook/internal/logger"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/server"
	"sandlot-scorebook/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(pubsub.New),
	// repos
	fx.Provide(repository.NewGameRepository),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewLineupRepository),
	fx.Provide(repository.NewAtBatEventRepository),
	fx.Provide(repository.NewRunnerRepository),
	fx.Provide(repository.NewCursorRepository),
	fx.Provide(repository.NewPitchingLineRepository),
	// svc
	fx.Provide(service.NewRunnerService),
	fx.Provide(service.NewPlateAppearanceService),
	fx.Provide(service.NewInningService),
	fx.Provide(service.NewGameService),
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewScorebookServer),
)
