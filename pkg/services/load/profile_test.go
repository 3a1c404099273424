package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfiles_MissingFileReturnsDefault(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Contains(t, profiles, DefaultProfileName)
}

func TestLoadProfiles_EmptyPathReturnsDefault(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Contains(t, profiles, DefaultProfileName)
}

func TestLoadProfiles_ParsesFile(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - name: district
    columns:
      name: ["titel"]
      category_label: ["kode"]
      location: ["plank"]
`)

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Contains(t, profiles, "district")
	assert.Contains(t, profiles, DefaultProfileName)

	district := profiles["district"]
	assert.Equal(t, []string{"titel"}, district.Columns[RoleName])
	assert.Equal(t, []string{"kode"}, district.Columns[RoleCategoryLabel])
}

func TestLoadProfiles_RejectsUnknownRole(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - name: bad
    columns:
      name: ["titel"]
      isbn: ["isbn"]
`)

	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field role")
}

func TestLoadProfiles_RequiresNameAliases(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - name: bad
    columns:
      category_label: ["kode"]
`)

	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column aliases")
}

func TestLoadProfiles_RejectsEmptyName(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - name: "  "
    columns:
      name: ["titel"]
`)

	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestSetDefault_AliasesNamedProfile(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - name: district
    columns:
      name: ["titel"]
`)

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)

	require.NoError(t, SetDefault(profiles, "district"))
	assert.Equal(t, []string{"titel"}, profiles[DefaultProfileName].Columns[RoleName])
}

func TestSetDefault_EmptyNameKeepsBuiltin(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)

	require.NoError(t, SetDefault(profiles, ""))
	assert.Contains(t, profiles[DefaultProfileName].Columns[RoleName], "book_name")
}

func TestSetDefault_UnknownProfile(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)

	err = SetDefault(profiles, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing" not defined`)
}

func TestDefaultProfile_CoversLegacyHeaders(t *testing.T) {
	p := DefaultProfile()
	assert.Contains(t, p.Columns[RoleCategoryName], "category")
	assert.Contains(t, p.Columns[RoleName], "book_name")
	assert.Contains(t, p.Columns[RoleLocation], "location")
	assert.Contains(t, p.Columns[RoleBookID], "book_id")
}
