package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWellFormed(t *testing.T) {
	record := Parse("Artist: Queen\nTitle: Bohemian Rhapsody\n")

	assert.Equal(t, "Queen", record.Artist)
	assert.Equal(t, "Bohemian Rhapsody", record.Title)
	assert.True(t, record.Complete())
}

func TestParseOrderIrrelevant(t *testing.T) {
	record := Parse("Title: Time\nArtist: Pink Floyd")

	assert.Equal(t, "Pink Floyd", record.Artist)
	assert.Equal(t, "Time", record.Title)
}

func TestParseCaseInsensitivePrefix(t *testing.T) {
	cases := []string{
		"artist: Kraftwerk\ntitle: Autobahn",
		"ARTIST: Kraftwerk\nTITLE: Autobahn",
		"ArTiSt: Kraftwerk\nTiTlE: Autobahn",
	}

	for _, content := range cases {
		record := Parse(content)
		assert.Equal(t, "Kraftwerk", record.Artist, "content: %q", content)
		assert.Equal(t, "Autobahn", record.Title, "content: %q", content)
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	record := Parse("  Artist:   Daft Punk  \n\tTitle:\tAround the World \n")

	assert.Equal(t, "Daft Punk", record.Artist)
	assert.Equal(t, "Around the World", record.Title)
}

func TestParseLastDuplicateWins(t *testing.T) {
	record := Parse("Artist: First\nTitle: Song\nArtist: Second")

	assert.Equal(t, "Second", record.Artist)
	assert.Equal(t, "Song", record.Title)
}

func TestParseMissingTitle(t *testing.T) {
	record := Parse("Artist: Solo Act")

	assert.Equal(t, "Solo Act", record.Artist)
	assert.Equal(t, "", record.Title)
	assert.False(t, record.Complete())
}

func TestParseEmptyContent(t *testing.T) {
	record := Parse("")

	assert.Equal(t, "", record.Artist)
	assert.Equal(t, "", record.Title)
}

func TestParseIgnoresUnknownLines(t *testing.T) {
	content := "Album: The Wall\n" +
		"Artist: Pink Floyd\n" +
		"Duration: 6:23\n" +
		"Title: Comfortably Numb\n" +
		"some free-form text\n"

	record := Parse(content)
	assert.Equal(t, "Pink Floyd", record.Artist)
	assert.Equal(t, "Comfortably Numb", record.Title)
}

func TestParseValueKeepsColons(t *testing.T) {
	record := Parse("Title: Part 1: The Beginning\nArtist: Band: Name")

	assert.Equal(t, "Part 1: The Beginning", record.Title)
	assert.Equal(t, "Band: Name", record.Artist)
}

func TestParseBlankLinesSkipped(t *testing.T) {
	record := Parse("\n\nArtist: A\n\n\nTitle: B\n\n")

	assert.Equal(t, "A", record.Artist)
	assert.Equal(t, "B", record.Title)
}
