package sqlite

import (
	"context"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.DialectInfo{
			Type:        models.DBSQLite,
			DisplayName: "SQLite",
			Description: "SQLite 3 database file",
		},
		Factory: func(_ context.Context, conn models.DatabaseConnection) (datasource.ConnectionTester, error) {
			adapter, err := NewAdapter(conn.Database)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		},
	})
}
