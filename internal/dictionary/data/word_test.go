package data

import (
	"testing"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "rama", escapeLike("rama"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "word_index ASC", orderClause(types.SortSpec{Field: types.SortWordIndex, Order: types.SortAsc}))
	assert.Equal(t, "word_index DESC", orderClause(types.SortSpec{Field: types.SortWordIndex, Order: types.SortDesc}))
	assert.Equal(t, "phonetic DESC, word_index ASC", orderClause(types.SortSpec{Field: types.SortPhonetic, Order: types.SortDesc}))
	assert.Equal(t, "score DESC, word_index ASC", orderClause(types.SortSpec{Field: types.SortRelevance, Order: types.SortDesc, ScoreTieBreak: true}))
}
