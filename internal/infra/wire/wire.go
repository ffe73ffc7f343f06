//go:build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/uniedit/fintoc-gateway/internal/infra/config"
)

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		InfraSet,
		FintocSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
