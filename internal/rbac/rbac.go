// Package rbac answers which role holds which admin capability.
package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"

	"trustify/internal/constants"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

// Enforcer wraps the casbin enforcer.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer loads the policies stored in db and seeds the administrator's
// capabilities.
func NewEnforcer(db *gorm.DB) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	enf := &Enforcer{e: e}
	if err := enf.seed(); err != nil {
		return nil, err
	}
	slog.Info("RBAC enforcer initialized")
	return enf, nil
}

func (enf *Enforcer) seed() error {
	for _, capability := range []string{constants.CapManageOptions, constants.CapActivatePlugins} {
		if err := enf.Grant(constants.RoleAdministrator, capability); err != nil {
			return fmt.Errorf("failed to seed capability %s: %w", capability, err)
		}
	}
	return nil
}

// Grant gives role the capability. Granting twice is a no-op.
func (enf *Enforcer) Grant(role, capability string) error {
	_, err := enf.e.AddPolicy(role, capability)
	return err
}

func (enf *Enforcer) Revoke(role, capability string) error {
	_, err := enf.e.RemovePolicy(role, capability)
	return err
}

// Can reports whether role holds capability. An empty capability is open to
// every role.
func (enf *Enforcer) Can(role, capability string) (bool, error) {
	if capability == "" {
		return true, nil
	}
	if role == "" {
		return false, nil
	}
	return enf.e.Enforce(role, capability)
}
