// Package seed provides the read-only baseline dataset of users, properties
// and conversations used when nothing has been persisted yet.
package seed

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/raphaelgruber/estatehub/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Dataset is an immutable seed. Accessors return copies so callers can never
// mutate the fixture.
type Dataset struct {
	users      []models.User
	properties []models.Property
	messages   map[string][]models.Message
}

type seedFile struct {
	Users      []models.User               `yaml:"users"`
	Properties []models.Property           `yaml:"properties"`
	Messages   map[string][]models.Message `yaml:"messages"`
}

// Load parses the embedded default dataset.
func Load() (*Dataset, error) {
	return Parse(defaultSeed)
}

// MustLoad is Load for callers that cannot proceed without the seed.
func MustLoad() *Dataset {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// Parse decodes and validates a YAML dataset.
func Parse(data []byte) (*Dataset, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	d := &Dataset{
		users:      f.Users,
		properties: f.Properties,
		messages:   f.Messages,
	}
	if d.messages == nil {
		d.messages = make(map[string][]models.Message)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return d, nil
}

func (d *Dataset) validate() error {
	ids := make(map[string]bool)
	emails := make(map[string]bool)
	for _, u := range d.users {
		if u.ID == "" || u.Email == "" {
			return fmt.Errorf("user %q: id and email are required", u.Name)
		}
		if ids[u.ID] {
			return fmt.Errorf("duplicate user id %q", u.ID)
		}
		if emails[u.Email] {
			return fmt.Errorf("duplicate email %q", u.Email)
		}
		ids[u.ID] = true
		emails[u.Email] = true
	}

	propIDs := make(map[string]bool)
	for _, p := range d.properties {
		if p.ID == "" || strings.Contains(p.ID, "_") {
			return fmt.Errorf("property %q: id must be non-empty and free of '_'", p.ID)
		}
		if propIDs[p.ID] {
			return fmt.Errorf("duplicate property id %q", p.ID)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("property %q: unknown type %q", p.ID, p.Type)
		}
		propIDs[p.ID] = true
	}
	return nil
}

// Users returns a copy of the seeded users.
func (d *Dataset) Users() []models.User {
	out := make([]models.User, len(d.users))
	for i, u := range d.users {
		out[i] = u.Clone()
	}
	return out
}

// Properties returns a copy of the seeded properties.
func (d *Dataset) Properties() []models.Property {
	return models.CloneProperties(d.properties)
}

// Messages returns a copy of the seeded chat id to message list mapping.
func (d *Dataset) Messages() map[string][]models.Message {
	out := make(map[string][]models.Message, len(d.messages))
	for chatID, msgs := range d.messages {
		out[chatID] = models.CloneMessages(msgs)
	}
	return out
}

// ChatIDs returns the seeded chat ids in sorted order.
func (d *Dataset) ChatIDs() []string {
	return slices.Sorted(maps.Keys(d.messages))
}

// ChatMessages returns a copy of one seeded chat, or nil.
func (d *Dataset) ChatMessages(chatID string) []models.Message {
	return models.CloneMessages(d.messages[chatID])
}

// UserByEmail finds a seeded user by exact email.
func (d *Dataset) UserByEmail(email string) (models.User, bool) {
	for _, u := range d.users {
		if u.Email == email {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

// UserByID finds a seeded user by id.
func (d *Dataset) UserByID(id string) (models.User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

// PropertyByID finds a seeded property by id.
func (d *Dataset) PropertyByID(id string) (models.Property, bool) {
	for _, p := range d.properties {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Property{}, false
}
