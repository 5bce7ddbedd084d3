package slugs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Liège", "liege"},
		{"Namur", "namur"},
		{"Braine-l'Alleud", "braine-l-alleud"},
		{"  Écaussinnes  ", "ecaussinnes"},
		{"Flandre occidentale", "flandre-occidentale"},
		{"Saint-Josse-ten-Noode", "saint-josse-ten-noode"},
		{"--Anvers--Centre--", "anvers-centre"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Liège",
		"Estimation immobilière à Namur",
		"Sint-Genesius-Rode / Rhode-Saint-Genèse",
		"Œudeghien",
		"a__b  c",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFolderSlug(t *testing.T) {
	const prefix = "prix-m2-a-"
	assert.Equal(t, "namur", FolderSlug("prix-m2-a-namur", prefix))
	assert.Equal(t, "prix-m2-anvers", FolderSlug("prix-m2-anvers", prefix))
	assert.Equal(t, "estimation-par-ville", FolderSlug("estimation-par-ville", prefix))
	assert.Equal(t, "prix-m2-a-", FolderSlug("prix-m2-a-", prefix))
	assert.Equal(t, "namur", FolderSlug("namur", ""))
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("la-louviere"))
	assert.True(t, IsCanonical("namur"))
	assert.False(t, IsCanonical(""))
	assert.False(t, IsCanonical("La-Louviere"))
	assert.False(t, IsCanonical("la_louviere"))
	assert.False(t, IsCanonical("la--louviere"))
	assert.False(t, IsCanonical("-namur"))
}
