package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/clipqa/annotation-service/internal/domain"
)

// usersFile is the on-disk layout of the seed users file:
//
//	[[users]]
//	email = "ann@example.com"
//	password = "correct horse"
type usersFile struct {
	Users []domain.SeedUser `toml:"users"`
}

// LoadUsers reads and decodes a seed users file. Unknown keys are rejected so
// a typo in "password" does not silently create an account without one.
func LoadUsers(path string) ([]domain.SeedUser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer file.Close()

	var f usersFile
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}

	for i := range f.Users {
		f.Users[i].Email = strings.TrimSpace(f.Users[i].Email)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("users file %s lists no users", path)
	}
	return f.Users, nil
}
