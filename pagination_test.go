package tracker_test

import (
	"testing"

	tracker "github.com/goliatone/go-tracker"
	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       tracker.PageRequest
		offset     int
	}{
		{"defaults", 0, 0, tracker.PageRequest{Page: 0, Size: tracker.DefaultPageSize}, 0},
		{"negative page", -3, 5, tracker.PageRequest{Page: 0, Size: 5}, 0},
		{"oversized", 2, 1000, tracker.PageRequest{Page: 2, Size: tracker.MaxPageSize}, 2 * tracker.MaxPageSize},
		{"regular", 3, 10, tracker.PageRequest{Page: 3, Size: 10}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tracker.NewPageRequest(tt.page, tt.size)
			assert.Equal(t, tt.want, req)
			assert.Equal(t, tt.offset, req.Offset())
		})
	}

	assert.Equal(t, 4*tracker.DefaultPageSize, tracker.PageRequest{Page: 4}.Offset())
}

func TestNewPage(t *testing.T) {
	page := tracker.NewPage([]string{"a", "b"}, tracker.NewPageRequest(0, 2), 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)

	empty := tracker.NewPage[string](nil, tracker.NewPageRequest(0, 10), 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.First)
	assert.True(t, empty.Last)

	last := tracker.NewPage([]int{9}, tracker.NewPageRequest(4, 2), 9)
	assert.Equal(t, 5, last.TotalPages)
	assert.True(t, last.Last)
}

func TestMapPage(t *testing.T) {
	page := tracker.NewPage([]int{1, 2, 3}, tracker.NewPageRequest(1, 3), 7)
	mapped := tracker.MapPage(page, func(v int) int { return v * 10 })

	assert.Equal(t, []int{10, 20, 30}, mapped.Content)
	assert.Equal(t, page.Page, mapped.Page)
	assert.Equal(t, page.TotalElements, mapped.TotalElements)
	assert.Equal(t, page.TotalPages, mapped.TotalPages)
	assert.False(t, mapped.First)
}
