package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admins.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAdmins(t *testing.T) {
	preHashed, err := bcrypt.GenerateFromPassword([]byte("other"), bcrypt.MinCost)
	require.NoError(t, err)

	path := writeFile(t, `
admins:
  - username: kari
    password: s3cret
  - username: " per "
    password_hash: "`+string(preHashed)+`"
`)

	admins, err := loadAdminsFromYAML(path, bcrypt.MinCost)
	require.NoError(t, err)
	require.Len(t, admins, 2)

	assert.Equal(t, "kari", admins[0].Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].PasswordHash), []byte("s3cret")))
	assert.Equal(t, "per", admins[1].Username)
	assert.Equal(t, string(preHashed), admins[1].PasswordHash)
}

func TestLoadAdmins_Empty(t *testing.T) {
	admins, err := loadAdminsFromYAML(writeFile(t, "  \n"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestLoadAdmins_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing username": "admins:\n  - password: x\n",
		"missing password": "admins:\n  - username: kari\n",
		"both set":         "admins:\n  - username: kari\n    password: x\n    password_hash: y\n",
		"bad hash":         "admins:\n  - username: kari\n    password_hash: not-bcrypt\n",
		"duplicate":        "admins:\n  - username: kari\n    password: x\n  - username: kari\n    password: y\n",
		"malformed yaml":   "admins: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadAdminsFromYAML(writeFile(t, content), bcrypt.MinCost)
			assert.Error(t, err)
		})
	}
}
