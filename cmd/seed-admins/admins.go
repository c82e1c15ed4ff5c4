package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type adminsFile struct {
	Admins []adminEntry `yaml:"admins"`
}

// adminEntry takes either a plaintext password or a precomputed bcrypt hash.
type adminEntry struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

type seedAdmin struct {
	Username     string
	PasswordHash string
}

func loadAdminsFromYAML(path string, cost int) ([]seedAdmin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read admins file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var file adminsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal admins yaml: %w", err)
	}

	seen := make(map[string]bool, len(file.Admins))
	admins := make([]seedAdmin, 0, len(file.Admins))
	for i, entry := range file.Admins {
		username := strings.TrimSpace(entry.Username)
		if username == "" {
			return nil, fmt.Errorf("admins[%d]: username is required", i)
		}
		if seen[username] {
			return nil, fmt.Errorf("admins[%d]: duplicate username %q", i, username)
		}
		seen[username] = true

		hash, err := passwordHash(entry, cost)
		if err != nil {
			return nil, fmt.Errorf("admins[%d]: %w", i, err)
		}
		admins = append(admins, seedAdmin{Username: username, PasswordHash: hash})
	}
	return admins, nil
}

func passwordHash(entry adminEntry, cost int) (string, error) {
	switch {
	case entry.PasswordHash != "" && entry.Password != "":
		return "", fmt.Errorf("set either password or password_hash, not both")
	case entry.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(entry.PasswordHash)); err != nil {
			return "", fmt.Errorf("password_hash is not a bcrypt hash: %w", err)
		}
		return entry.PasswordHash, nil
	case entry.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), cost)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return string(hash), nil
	default:
		return "", fmt.Errorf("password or password_hash is required")
	}
}
