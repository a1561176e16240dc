//go:build integration

package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func TestGetPostgres_SharedContainer(t *testing.T) {
	first := GetPostgres(t)
	second := GetPostgres(t)

	assert.Same(t, first, second)
	assert.Equal(t, models.DBPostgreSQL, first.Connection.DBType)
	assert.NotZero(t, first.Connection.Port)
}
