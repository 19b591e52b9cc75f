package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/api"
	"github.com/bookhavenapp/bookhaven-server/internal/backup"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/logger"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	instanceService := do.MustInvoke[*service.InstanceService](i)
	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	userService := do.MustInvoke[*service.UserService](i)
	cartService := do.MustInvoke[*service.CartService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	authorService := do.MustInvoke[*service.AuthorService](i)
	addressService := do.MustInvoke[*service.AddressService](i)
	orderService := do.MustInvoke[*service.OrderService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	backupService := do.MustInvoke[*backup.Service](i)

	// Ensure the instance record exists before serving requests.
	ctx := context.Background()
	instance, err := instanceService.EnsureInstance(ctx, cfg.Server.Name, api.APIVersion)
	if err != nil {
		return nil, err
	}

	if instance.HasRootUser {
		log.Info("Server instance is configured and ready",
			"instance_id", instance.ID,
			"created_at", instance.CreatedAt,
		)
	} else {
		log.Warn("Server instance needs setup - no root admin configured",
			"instance_id", instance.ID,
			"setup_required", true,
		)
	}

	services := &api.Services{
		Instance: instanceService,
		Auth:     authService,
		Session:  sessionService,
		User:     userService,
		Cart:     cartService,
		Book:     bookService,
		Author:   authorService,
		Address:  addressService,
		Order:    orderService,
		Search:   searchService,
		Backup:   backupService,
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, indexHandle.Index, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
