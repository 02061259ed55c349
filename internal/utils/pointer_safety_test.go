package utils_test

import (
	"math"
	"testing"

	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValueAndPtr(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{"first page", 0, 2, []int{1, 2}},
		{"middle page", 2, 2, []int{3, 4}},
		{"short last page", 4, 2, []int{5}},
		{"no limit", 1, 0, []int{2, 3, 4, 5}},
		{"offset past end", 5, 2, nil},
		{"negative offset", -1, 1, []int{1}},
		{"huge limit", 1, math.MaxInt, []int{2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, utils.Page(items, tt.offset, tt.limit))
		})
	}
}
