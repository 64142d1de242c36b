package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goasset "github.com/reoring/goasset"
)

func TestGJSONPath(t *testing.T) {
	cases := []struct {
		in        string
		want      string
		wildcards int
	}{
		{"$", "", 0},
		{"$.mSource.mTerms[*].Term", "mSource.mTerms.#.Term", 1},
		{"$.mSource.mTerms[2].Term", "mSource.mTerms.2.Term", 0},
		{"$['m.Name']", `m\.Name`, 0},
		{"$.a[*].b.*", "a.#.b", 2},
		{"$.mSource.mTerms[*]", "mSource.mTerms", 1},
	}
	for _, c := range cases {
		got, n, err := gjsonPath(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
		assert.Equal(t, c.wildcards, n, c.in)
	}
	for _, bad := range []string{"mSource", "$..x", "$.a[", "$.a[?(@.x)]"} {
		_, _, err := gjsonPath(bad)
		assert.Error(t, err, bad)
	}
}

func terms() goasset.Value {
	term := func(name string, langs ...string) goasset.Value {
		ls := make([]goasset.Value, len(langs))
		for i, l := range langs {
			ls[i] = goasset.String(l)
		}
		return goasset.Fields("Term", goasset.String(name), "Languages", goasset.List(ls...))
	}
	return goasset.Fields("mSource", goasset.Fields("mTerms", goasset.List(
		term("Menu/Start", "Start", "Démarrer"),
		term("Menu/Quit", "Quit"),
	)))
}

func TestSelectPath(t *testing.T) {
	v, err := selectPath(terms(), "$.mSource.mTerms[*].Term")
	require.NoError(t, err)
	assert.True(t, goasset.Equal(goasset.List(goasset.String("Menu/Start"), goasset.String("Menu/Quit")), v), v.String())

	v, err = selectPath(terms(), "$.mSource.mTerms[*].Languages[*]")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len(), v.String())

	v, err = selectPath(terms(), "$.mSource.mTerms[1].Term")
	require.NoError(t, err)
	assert.True(t, goasset.Equal(goasset.List(goasset.String("Menu/Quit")), v), v.String())

	v, err = selectPath(terms(), "$.mSource.missing")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestPrune(t *testing.T) {
	v := prune(terms(), 1)
	src, _ := v.Get("mSource")
	mt, _ := src.Get("mTerms")
	s, ok := mt.Text()
	require.True(t, ok, mt.String())
	assert.Equal(t, "[Array]", s)
	assert.True(t, goasset.Equal(terms(), prune(terms(), -1)))
}
