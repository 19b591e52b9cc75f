package api

import (
	"github.com/bookhavenapp/bookhaven-server/internal/backup"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Instance *service.InstanceService
	Auth     *service.AuthService
	Session  *service.SessionService
	User     *service.UserService
	Cart     *service.CartService
	Book     *service.BookService
	Author   *service.AuthorService
	Address  *service.AddressService
	Order    *service.OrderService
	Search   *service.SearchService
	Backup   *backup.Service
}
