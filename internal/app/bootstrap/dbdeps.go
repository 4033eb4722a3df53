// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/store/local"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	Local    *local.Store
	Registry *registry.Registry
}
