package migration

import (
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OrdersAndChecksums(t *testing.T) {
	src := fstest.MapFS{
		"V10__later.sql":   {Data: []byte("SELECT 10;")},
		"V2__second.sql":   {Data: []byte("  SELECT 2;\n")},
		"README.md":        {Data: []byte("ignored")},
		"V1__first.sql":    {Data: []byte("SELECT 1;")},
		"nested/V3__x.sql": {Data: []byte("SELECT 3;")},
	}

	migs, err := Load(src)
	require.NoError(t, err)
	require.Len(t, migs, 3)

	assert.Equal(t, []int64{1, 2, 10}, []int64{migs[0].Version, migs[1].Version, migs[2].Version})
	assert.Equal(t, "second", migs[1].Name)
	assert.Equal(t, "SELECT 2;", migs[1].SQL)
	assert.Len(t, migs[0].Checksum, 64)
	assert.NotEqual(t, migs[0].Checksum, migs[1].Checksum)
}

func TestLoad_RejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"V1__a.sql":  {Data: []byte("SELECT 1;")},
		"V01__b.sql": {Data: []byte("SELECT 1;")},
	})
	assert.ErrorContains(t, err, "duplicate migration version")

	_, err = Load(fstest.MapFS{"V1__a.sql": {Data: []byte("   ")}})
	assert.ErrorContains(t, err, "empty migration file")
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := Load(Files())
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Contains(t, migs[0].SQL, "CREATE TABLE IF NOT EXISTS assessment_responses")
}

func TestSplitResponseID(t *testing.T) {
	c, a := uuid.New(), uuid.New()

	gotC, gotA, err := SplitResponseID(c.String() + "_" + a.String())
	require.NoError(t, err)
	assert.Equal(t, c, gotC)
	assert.Equal(t, a, gotA)

	for _, bad := range []string{"", "abc", c.String(), c.String() + "_", "x_" + a.String(), c.String() + "_nope"} {
		_, _, err := SplitResponseID(bad)
		assert.ErrorIs(t, err, ErrMalformedResponseID, bad)
	}
}

func TestPending(t *testing.T) {
	migs := []Migration{
		{Version: 1, Name: "init", Checksum: "aaa"},
		{Version: 2, Name: "log", Checksum: "bbb"},
		{Version: 3, Name: "more", Checksum: "ccc"},
	}

	out, err := Pending(migs, map[int64]string{1: "aaa"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].Version)

	out, err = Pending(migs, map[int64]string{1: "aaa", 2: "bbb", 3: "ccc"})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Pending(migs, map[int64]string{2: "edited"})
	assert.ErrorContains(t, err, "checksum mismatch: version=2")
}
