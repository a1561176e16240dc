package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func TestNewForm_Defaults(t *testing.T) {
	f := NewForm()
	assert.Equal(t, models.DBPostgreSQL, f.DBType)
	assert.Equal(t, "localhost", f.Host)
	assert.Equal(t, 5432, f.Port)
	assert.Empty(t, f.Database)
	assert.Empty(t, f.Name)
	assert.False(t, f.Submittable())
}

func TestSetDBType_ResetsPort(t *testing.T) {
	expected := map[models.DBType]int{
		models.DBPostgreSQL: 5432,
		models.DBMySQL:      3306,
		models.DBSQLite:     0,
	}

	for _, from := range models.DBTypes {
		for _, to := range models.DBTypes {
			f := NewForm()
			f.SetDBType(from)
			f.Port = 15432 // manual edit
			f.SetDBType(to)
			assert.Equal(t, expected[to], f.Port, "switch %s -> %s", from, to)
			assert.Equal(t, to, f.DBType)
		}
	}
}

func TestSetField(t *testing.T) {
	f := NewForm()
	require.NoError(t, f.SetField(FieldDBType, "mysql"))
	assert.Equal(t, 3306, f.Port)

	require.NoError(t, f.SetField(FieldPort, "3307"))
	assert.Equal(t, 3307, f.Port)

	require.NoError(t, f.SetField(FieldPort, ""))
	assert.Equal(t, 0, f.Port)

	for field, value := range map[string]string{
		FieldHost: "db.local", FieldDatabase: "sales", FieldUsername: "u",
		FieldPassword: "p", FieldName: "Sales DB", FieldTableName: "orders",
	} {
		require.NoError(t, f.SetField(field, value))
	}
	assert.Equal(t, "db.local", f.Host)
	assert.Equal(t, "orders", f.TableName)
	assert.True(t, f.Submittable())

	err := f.SetField(FieldPort, "abc")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.Port)

	err = f.SetField(FieldDBType, "oracle")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, models.DBMySQL, f.DBType)

	assert.Error(t, f.SetField("colour", "blue"))
}

func TestIsSubmittable(t *testing.T) {
	full := models.DatabaseConnection{Host: "h", Database: "d", Username: "u", Password: "p"}

	tests := []struct {
		name   string
		mutate func(*models.DatabaseConnection)
		dbName string
		want   map[models.DBType]bool
	}{
		{
			name:   "all fields present",
			mutate: func(c *models.DatabaseConnection) {},
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: true, models.DBMySQL: true, models.DBSQLite: true},
		},
		{
			name:   "missing name",
			mutate: func(c *models.DatabaseConnection) {},
			dbName: "",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: false},
		},
		{
			name:   "missing database",
			mutate: func(c *models.DatabaseConnection) { c.Database = "" },
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: false},
		},
		{
			name:   "missing host",
			mutate: func(c *models.DatabaseConnection) { c.Host = "" },
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: true},
		},
		{
			name:   "missing username",
			mutate: func(c *models.DatabaseConnection) { c.Username = "" },
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: true},
		},
		{
			name:   "missing password",
			mutate: func(c *models.DatabaseConnection) { c.Password = "" },
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: true},
		},
		{
			name: "sqlite with only a path",
			mutate: func(c *models.DatabaseConnection) {
				c.Host, c.Username, c.Password = "", "", ""
			},
			dbName: "n",
			want:   map[models.DBType]bool{models.DBPostgreSQL: false, models.DBMySQL: false, models.DBSQLite: true},
		},
	}

	for _, tt := range tests {
		for dbType, want := range tt.want {
			conn := full
			conn.DBType = dbType
			tt.mutate(&conn)
			assert.Equal(t, want, IsSubmittable(conn, tt.dbName), "%s (%s)", tt.name, dbType)
		}
	}
}

func TestIsSubmittable_MySQLScenario(t *testing.T) {
	f := NewForm()
	f.SetDBType(models.DBMySQL)
	f.Host = "db.local"
	f.Database = "sales"
	f.Username = "u"
	f.Password = "p"
	f.Name = "Sales DB"

	assert.True(t, f.Submittable())
	assert.Equal(t, 3306, f.Port)
	assert.NoError(t, f.Validate())
}

func TestValidate_AgreesWithSubmittable(t *testing.T) {
	values := []string{"", "x"}
	for _, dbType := range models.DBTypes {
		for _, host := range values {
			for _, db := range values {
				for _, user := range values {
					for _, pass := range values {
						for _, name := range values {
							f := Form{
								DatabaseConnection: models.DatabaseConnection{
									DBType: dbType, Host: host, Database: db, Username: user, Password: pass,
								},
								Name: name,
							}
							assert.Equal(t, f.Submittable(), f.Validate() == nil, "%+v", f)
						}
					}
				}
			}
		}
	}
}

func TestValidate_NamesField(t *testing.T) {
	f := NewForm()
	f.Name = "n"
	f.Database = "d"

	err := f.Validate()
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, FieldUsername, ve.Field)

	f.DBType = "oracle"
	require.ErrorAs(t, f.Validate(), &ve)
	assert.Equal(t, FieldDBType, ve.Field)
}

func TestCheckTableName(t *testing.T) {
	assert.NoError(t, CheckTableName(""))
	assert.NoError(t, CheckTableName("orders"))

	err := CheckTableName("'; DROP TABLE users--")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestConnectRequest_NameFallback(t *testing.T) {
	f := NewForm()
	f.SetDBType(models.DBSQLite)
	f.Database = "/data/app.db"

	req := f.ConnectRequest()
	assert.Equal(t, "sqlite - /data/app.db", req.Name)
	assert.Empty(t, req.TableName)

	f.Name = "App"
	f.TableName = "events"
	req = f.ConnectRequest()
	assert.Equal(t, "App", req.Name)
	assert.Equal(t, "events", req.TableName)
	assert.Equal(t, models.DBSQLite, req.DBType)
}
