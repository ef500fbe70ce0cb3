// Package identity persists the anonymous user id that scopes every backend call.
package identity

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/docchat-cli/internal/utils"
)

// Identity is the on-disk record.
type Identity struct {
	UserID    string    `yaml:"user_id"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// NewUserID builds an id of the form user_<unix-ms>_<9 random chars>.
func NewUserID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), suffix)
}

// Load reads the identity at path. A missing file yields os.ErrNotExist.
func Load(path string) (*Identity, error) {
	path, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := yaml.Unmarshal(b, &id); err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	if strings.TrimSpace(id.UserID) == "" {
		return nil, fmt.Errorf("identity %s has no user_id", path)
	}
	return &id, nil
}

// LoadOrCreate returns the stored identity, creating and saving a new one on
// first use.
func LoadOrCreate(path string, now time.Time) (*Identity, error) {
	id, err := Load(path)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	id = &Identity{UserID: NewUserID(now), CreatedAt: now.UTC()}
	if err := Save(path, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Save writes id to path atomically.
func Save(path string, id *Identity) error {
	path, err := utils.ExpandHome(path)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
