package postgres

import (
	"context"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.DialectInfo{
			Type:           models.DBPostgreSQL,
			DisplayName:    "PostgreSQL",
			Description:    "PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			DefaultPort:    models.DefaultPort(models.DBPostgreSQL),
			RequiresServer: true,
		},
		Factory: func(ctx context.Context, conn models.DatabaseConnection) (datasource.ConnectionTester, error) {
			cfg, err := FromConnection(conn)
			if err != nil {
				return nil, err
			}
			adapter, err := NewAdapter(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		},
	})
}
