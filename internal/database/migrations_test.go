package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_OrderedAndComplete(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 4)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, strings.TrimSpace(m.SQL))
	}
	assert.Equal(t, "create_users", migrations[0].Name)
}

func TestLoadMigrations_EnforceBalanceInvariants(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)

	var all strings.Builder
	for _, m := range migrations {
		all.WriteString(m.SQL)
	}
	schema := all.String()

	assert.Contains(t, schema, "CHECK (wallet_amount >= 0)")
	assert.Contains(t, schema, "CHECK (amount + withdraw_amount <= donated_amount)")
	assert.Contains(t, schema, "CHECK (withdraw_amount >= 0)")
}

func TestConfigDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@h/db", Config{URL: "postgres://u:p@h/db", Host: "ignored"}.DSN())
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=ledger sslmode=disable",
		Config{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", DBName: "ledger", SSLMode: "disable"}.DSN())
}
