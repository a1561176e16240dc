package models

// DBType is a relational database dialect the backend can connect to.
type DBType string

const (
	DBPostgreSQL DBType = "postgresql"
	DBMySQL      DBType = "mysql"
	DBSQLite     DBType = "sqlite"
)

// DBTypes lists the supported dialects in the order they are offered to users.
var DBTypes = []DBType{DBPostgreSQL, DBMySQL, DBSQLite}

var defaultPorts = map[DBType]int{
	DBPostgreSQL: 5432,
	DBMySQL:      3306,
	DBSQLite:     0,
}

// Valid reports whether t is a supported dialect.
func (t DBType) Valid() bool {
	_, ok := defaultPorts[t]
	return ok
}

// RequiresServer reports whether host and credentials are needed.
// SQLite is file based: its database field holds a path.
func (t DBType) RequiresServer() bool {
	return t != DBSQLite
}

// DefaultPort returns the port a dialect switch resets to.
func DefaultPort(t DBType) int {
	return defaultPorts[t]
}

// DatabaseConnection is the body of POST /data-sources/database/test.
type DatabaseConnection struct {
	DBType   DBType `json:"db_type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DatabaseConnectRequest is the body of POST /data-sources/database/connect.
type DatabaseConnectRequest struct {
	DatabaseConnection
	Name      string `json:"name"`
	TableName string `json:"table_name,omitempty"`
}

// ConnectionTestStatusSuccess is the only status value that means the test passed.
const ConnectionTestStatusSuccess = "success"

// ConnectionTestResult is the body returned by the test endpoint.
type ConnectionTestResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// Succeeded reports whether the backend accepted the connection.
// Any status other than "success" is a failure, even on HTTP 200.
func (r *ConnectionTestResult) Succeeded() bool {
	return r != nil && r.Status == ConnectionTestStatusSuccess
}
