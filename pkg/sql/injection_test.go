package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValue_Clean(t *testing.T) {
	for _, v := range []string{"", "orders", "sales_2024", "O'Brien"} {
		assert.Nil(t, CheckValue("table_name", v), "value %q", v)
	}
}

func TestCheckValue_Injection(t *testing.T) {
	for _, v := range []string{
		"' OR '1'='1",
		"'; DROP TABLE users--",
		"1 UNION SELECT * FROM passwords",
		"admin'--",
	} {
		result := CheckValue("table_name", v)
		require.NotNil(t, result, "value %q", v)
		assert.Equal(t, "table_name", result.Field)
		assert.Equal(t, v, result.Value)
		assert.NotEmpty(t, result.Fingerprint)
	}
}
