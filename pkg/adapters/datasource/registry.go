package datasource

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// DialectInfo describes a registered adapter.
type DialectInfo struct {
	Type           models.DBType `json:"type" yaml:"type"`
	DisplayName    string        `json:"display_name" yaml:"display_name"`
	Description    string        `json:"description" yaml:"description"`
	DefaultPort    int           `json:"default_port" yaml:"default_port"`
	RequiresServer bool          `json:"requires_server" yaml:"requires_server"`
}

// Factory opens a tester for one connection.
type Factory func(ctx context.Context, conn models.DatabaseConnection) (ConnectionTester, error)

// Registration pairs an adapter's description with its factory.
type Registration struct {
	Info    DialectInfo
	Factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[models.DBType]Registration)
)

// Register is called by each adapter's init() function.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// Registered returns the registered dialects in the order users are offered
// them, followed by any others sorted by type.
func Registered() []DialectInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DialectInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	slices.SortFunc(result, func(a, b DialectInfo) int {
		return cmp.Or(cmp.Compare(rank(a.Type), rank(b.Type)), cmp.Compare(a.Type, b.Type))
	})
	return result
}

func rank(t models.DBType) int {
	if i := slices.Index(models.DBTypes, t); i >= 0 {
		return i
	}
	return len(models.DBTypes)
}

// GetFactory returns the factory for a dialect, or nil if none is registered.
func GetFactory(t models.DBType) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[t]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(t models.DBType) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[t]
	return ok
}
