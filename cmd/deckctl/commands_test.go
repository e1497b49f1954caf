package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
)

const catalogJSON = `[
 {"card_id":"L-1","name":"Luffy","category":"LEADER","colors":["Red"]},
 {"card_id":"C-1","name":"Nami","category":"CHARACTER","colors":["Red"],"cost":1},
 {"card_id":"C-2","name":"Zoro","category":"CHARACTER","colors":["Green"],"cost":3},
 {"card_id":"DON","name":"DON!!","category":"DON"}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(p, []byte(catalogJSON), 0o644))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseValues(t *testing.T) {
	got, err := parseValues([]string{"1", " none", "-", "5"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, cards.None, cards.None, 5}, got)

	_, err = parseValues([]string{"x"})
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	p := writeCatalog(t)

	out, err := execute(t, "--catalog", p, "encode", "--plain", "--leader", "L-1", "--card", "C-1*4", "--card", "C-2", "--don", "10")
	require.NoError(t, err)
	assert.Equal(t, "L:L-1;M:C-1*4_C-2*1;D:10\n", out)

	_, err = execute(t, "--catalog", p, "encode", "--leader", "L-1", "--card", "C-1*5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C-1")

	code := base64.StdEncoding.EncodeToString([]byte("L:L-1;M:C-1*2_X-9*1;D:3"))
	out, err = execute(t, "--catalog", p, "decode", code)
	require.NoError(t, err)
	assert.Contains(t, out, "Leader: L-1 Luffy")
	assert.Contains(t, out, "2x C-1")
	assert.Contains(t, out, "Main: 2  DON!!: 3")
}

func TestFilterCommand(t *testing.T) {
	p := writeCatalog(t)
	_, err := execute(t, "--catalog", p, "filter", "--cost", "cheap")
	require.Error(t, err)

	out, err := execute(t, "--catalog", p, "filter", "--color", "Red", "--category", "character", "--cost", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nami")
	assert.True(t, strings.HasSuffix(out, "1 matches\n"))
}

func TestBuildDeck_NoDonCard(t *testing.T) {
	idx, err := cards.BuildIndex([]cards.Card{{CardID: "L-1", Category: cards.Leader}})
	require.NoError(t, err)
	_, err = buildDeck(idx, "L-1", nil, 1)
	assert.Error(t, err)

	d, err := buildDeck(idx, "L-1", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "L-1", d.Leader())
	assert.Equal(t, 0, d.MainCount())
}
