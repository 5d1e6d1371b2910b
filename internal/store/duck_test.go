package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geun-Oh/ufwlog/internal/entry"
)

func TestSaveRejectsBadTableName(t *testing.T) {
	d := &Duck{}
	for _, name := range []string{"", "bad name", "t;drop", "1st"} {
		err := d.Save(name, nil)
		assert.Error(t, err, "table %q", name)
	}
}

func TestExtraJSON(t *testing.T) {
	r := entry.New(nil, map[string]string{"WEIRD": "thing", "OTHER": "x"}, "raw")
	v, err := extraJSON(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"WEIRD":"thing","OTHER":"x"}`, v.(string))

	v, err = extraJSON(entry.New(nil, nil, "raw"))
	require.NoError(t, err)
	assert.Nil(t, v)
}
