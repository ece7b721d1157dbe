package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 20, p.Offset())

	p = NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.Offset())
}

func TestPageFromQuery(t *testing.T) {
	page, perPage := PageFromQuery(url.Values{"page": {"3"}, "per_page": {"50"}})
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, perPage)

	page, perPage = PageFromQuery(url.Values{})
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)

	page, perPage = PageFromQuery(url.Values{"page": {"-1"}, "per_page": {"9999"}})
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)

	_, perPage = PageFromQuery(url.Values{"per_page": {"abc"}})
	assert.Equal(t, 20, perPage)
}
