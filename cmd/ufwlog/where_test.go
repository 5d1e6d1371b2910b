package main

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

func evalOn(t *testing.T, cond string, fields map[string]entry.Value) bool {
	t.Helper()
	p, err := parseWhere(cond)
	require.NoError(t, err)
	return p.Eval(entry.New(fields, nil, ""))
}

func TestParseWhere(t *testing.T) {
	blocked := map[string]entry.Value{
		"ACTION": entry.Enum("BLOCK"),
		"SRC":    entry.IP(netip.MustParseAddr("192.168.1.5")),
		"DPT":    entry.Int(25565),
	}

	tests := []struct {
		cond string
		want bool
	}{
		{"DPT==25565", true},
		{"DPT==80", false},
		{"DPT!=80", true},
		{"DPT<=25565", true},
		{"DPT<100", false},
		{"DPT>=100", true},
		{"ACTION==BLOCK", true},
		{"SRC%192.168.", true},
		{"SRC!%192.168.", false},
		{"SRC%10.", false},
		{"DPT in 80,443,25565", true},
		{"DPT in 80,443", false},
		{"DPT not in 80,443", true},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			assert.Equal(t, tt.want, evalOn(t, tt.cond, blocked))
		})
	}
}

func TestParseWhereErrors(t *testing.T) {
	_, err := parseWhere("DPT~25565")
	assert.Error(t, err)

	_, err = parseWhere("NOPE==1")
	assert.Error(t, err)

	_, err = parseWhere("DPT==notaport")
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrTypeMismatch)
}

func TestBuildPredicate(t *testing.T) {
	p, err := buildPredicate(nil, false)
	require.NoError(t, err)
	assert.Nil(t, p)

	rec := entry.New(map[string]entry.Value{
		"ACTION": entry.Enum("BLOCK"),
		"DPT":    entry.Int(22),
	}, nil, "")

	all, err := buildPredicate([]string{"ACTION==BLOCK", "DPT==22"}, false)
	require.NoError(t, err)
	assert.True(t, all.Eval(rec))

	none, err := buildPredicate([]string{"ACTION==ALLOW", "DPT==22"}, false)
	require.NoError(t, err)
	assert.False(t, none.Eval(rec))

	either, err := buildPredicate([]string{"ACTION==ALLOW", "DPT==22"}, true)
	require.NoError(t, err)
	assert.True(t, either.Eval(rec))
}
