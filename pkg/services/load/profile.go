package load

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical field roles a source column can map to.
const (
	RoleBookID        = "book_id"
	RoleName          = "name"
	RoleCategoryName  = "category_name"
	RoleCategoryLabel = "category_label"
	RoleLocation      = "location"
)

// Profile maps canonical field roles to the header aliases a source may use
// for them. Header matching is case-insensitive; the first alias found in the
// header row wins.
type Profile struct {
	Name    string              `yaml:"name"`
	Columns map[string][]string `yaml:"columns"`
}

// DefaultProfileName identifies the built-in profile used when a load request
// names none.
const DefaultProfileName = "default"

// DefaultProfile covers the header spellings seen in the school's own
// exports, where casing drifted between files ("Category" vs "category_name",
// "Location" vs "location").
func DefaultProfile() Profile {
	return Profile{
		Name: DefaultProfileName,
		Columns: map[string][]string{
			RoleBookID:        {"book_id", "id"},
			RoleName:          {"book_name", "name", "title"},
			RoleCategoryName:  {"category_name", "category"},
			RoleCategoryLabel: {"category_label", "label"},
			RoleLocation:      {"location", "location_name", "storage_location"},
		},
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads source profiles from a YAML file and returns them keyed
// by name, with the built-in default always present. A missing path is not an
// error: callers get just the default.
func LoadProfiles(path string) (map[string]Profile, error) {
	profiles := map[string]Profile{DefaultProfileName: DefaultProfile()}

	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}

	for _, p := range file.Profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("parse profiles %s: profile with empty name", path)
		}
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		p.Name = name
		profiles[name] = p
	}

	return profiles, nil
}

// SetDefault aliases the named profile as the one used when a load request
// names none. An empty name keeps the built-in default.
func SetDefault(profiles map[string]Profile, name string) error {
	if name == "" || name == DefaultProfileName {
		return nil
	}
	p, ok := profiles[name]
	if !ok {
		return fmt.Errorf("default profile %q not defined", name)
	}
	profiles[DefaultProfileName] = p
	return nil
}

func validateProfile(p Profile) error {
	known := map[string]bool{
		RoleBookID:        true,
		RoleName:          true,
		RoleCategoryName:  true,
		RoleCategoryLabel: true,
		RoleLocation:      true,
	}
	for role := range p.Columns {
		if !known[role] {
			return fmt.Errorf("unknown field role %q", role)
		}
	}
	if len(p.Columns[RoleName]) == 0 {
		return fmt.Errorf("no column aliases for role %q", RoleName)
	}
	return nil
}
