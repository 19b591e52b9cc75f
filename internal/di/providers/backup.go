package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/api"
	"github.com/bookhavenapp/bookhaven-server/internal/backup"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/logger"
)

// ProvideBackupService provides the store backup service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	backupDir := filepath.Join(cfg.Data.BasePath, "backups")
	return backup.NewService(storeHandle.Store, backupDir, cfg.Server.Name, api.APIVersion, log.Logger), nil
}
