package mysql

import (
	"context"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.DialectInfo{
			Type:           models.DBMySQL,
			DisplayName:    "MySQL",
			Description:    "MySQL 5.7+, MariaDB, Aurora MySQL",
			DefaultPort:    models.DefaultPort(models.DBMySQL),
			RequiresServer: true,
		},
		Factory: func(_ context.Context, conn models.DatabaseConnection) (datasource.ConnectionTester, error) {
			cfg, err := NewDriverConfig(conn)
			if err != nil {
				return nil, err
			}
			adapter, err := NewAdapter(cfg)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		},
	})
}
