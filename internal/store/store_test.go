package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "reup.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func names(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Name
	}
	return out
}

func TestOpen_SeedsDefaults(t *testing.T) {
	s, _ := openTemp(t)

	disp, err := s.Dispensaries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunnyside", "Curaleaf", "Trulieve"}, names(disp))

	res, err := s.Resources()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Florida MMU Registry", "NORML Florida Chapter", "MMJ Health",
		"Privacy & Terms", "Moondog Development",
	}, names(res))

	r, err := s.Resource("privacy & terms")
	require.NoError(t, err)
	assert.Equal(t, "https://moondogdevelopment.com/privacy", r.URL)
}

func TestOpen_UpgradesVersionOneStore(t *testing.T) {
	s, path := openTemp(t)

	// Rewind to a version 1 store whose user dropped one of the defaults.
	_, err := s.db.Exec(`DELETE FROM resources WHERE label IN ('Privacy & Terms', 'Moondog Development', 'MMJ Health')`)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	res, err := reopened.Resources()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Florida MMU Registry", "NORML Florida Chapter",
		"Privacy & Terms", "Moondog Development",
	}, names(res))

	disp, err := reopened.Dispensaries()
	require.NoError(t, err)
	assert.Len(t, disp, 3)
}

func TestDispensaryLookupIsCaseInsensitive(t *testing.T) {
	s, _ := openTemp(t)

	l, err := s.Dispensary("curaleaf")
	require.NoError(t, err)
	assert.Equal(t, "Curaleaf", l.Name)
	assert.Equal(t, "https://curaleaf.com", l.URL)

	_, err = s.Dispensary("Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := s.Resource("mmj health")
	require.NoError(t, err)
	assert.Equal(t, "https://mmjhealth.com/", r.URL)
}

func TestAddDispensary_AppendsAndUpserts(t *testing.T) {
	s, _ := openTemp(t)

	require.NoError(t, s.AddDispensary("Green Dragon", "https://greendragon.com"))
	disp, err := s.Dispensaries()
	require.NoError(t, err)
	assert.Equal(t, "Green Dragon", disp[len(disp)-1].Name)

	require.NoError(t, s.AddDispensary("green dragon", "https://greendragon.com/shop"))
	disp, err = s.Dispensaries()
	require.NoError(t, err)
	assert.Len(t, disp, 4)
	l, err := s.Dispensary("Green Dragon")
	require.NoError(t, err)
	assert.Equal(t, "https://greendragon.com/shop", l.URL)
}

func TestAddDispensary_Validates(t *testing.T) {
	s, _ := openTemp(t)

	assert.ErrorIs(t, s.AddDispensary("  ", "https://x.com"), ErrEmptyName)
	assert.ErrorIs(t, s.AddDispensary("Bad", "ftp://x.com"), ErrInvalidURL)
	assert.ErrorIs(t, s.AddDispensary("Bad", "x.com"), ErrInvalidURL)
	assert.ErrorIs(t, s.AddDispensary("Bad", "javascript:alert(1)"), ErrInvalidURL)
}

func TestRemoveDispensary_StaysRemovedAfterReopen(t *testing.T) {
	s, path := openTemp(t)

	require.NoError(t, s.RemoveDispensary("Trulieve"))
	assert.ErrorIs(t, s.RemoveDispensary("Trulieve"), ErrNotFound)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	disp, err := reopened.Dispensaries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunnyside", "Curaleaf"}, names(disp))
}
