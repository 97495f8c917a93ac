package invoice

import (
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice/export"
	"github.com/smallbiznis/freelanceflow/internal/invoice/repository"
	"github.com/smallbiznis/freelanceflow/internal/invoice/service"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(export.New),
	fx.Provide(export.NewDocuments),
	fx.Provide(newFileDeliverer),
)

func newFileDeliverer(cfg config.Config, log *zap.Logger) *export.FileDeliverer {
	return export.NewFileDeliverer(afero.NewOsFs(), cfg.ExportDir, log)
}
