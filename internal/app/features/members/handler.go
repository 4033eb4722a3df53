// internal/app/features/members/handler.go
package members

import (
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/registry"
)

// Handler is the feature-level handler for member records. It holds the
// registry and logger provided by Startup.
type Handler struct {
	Registry *registry.Registry
	Log      *zap.Logger
}

func NewHandler(reg *registry.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Registry: reg,
		Log:      logger,
	}
}
