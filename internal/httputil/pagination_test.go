package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/signatrust/internal/httputil"
)

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		expected httputil.Page
		errMsg   string
	}{
		{name: "Success_Defaults", query: "", expected: httputil.Page{Offset: 0, Limit: 50}},
		{name: "Success_Custom", query: "?offset=20&limit=10", expected: httputil.Page{Offset: 20, Limit: 10}},
		{name: "Success_MaxLimit", query: "?limit=100", expected: httputil.Page{Offset: 0, Limit: 100}},
		{name: "Error_NegativeOffset", query: "?offset=-1", errMsg: "offset"},
		{name: "Error_OffsetNotNumber", query: "?offset=first", errMsg: "offset"},
		{name: "Error_ZeroLimit", query: "?limit=0", errMsg: "between 1 and 100"},
		{name: "Error_LimitTooLarge", query: "?limit=101", errMsg: "between 1 and 100"},
		{name: "Error_EmptyLimit", query: "?limit=", errMsg: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/keys"+tt.query, nil)

			page, err := httputil.ParsePage(c)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, []string{"a", "b"}, httputil.Slice(items, httputil.Page{Offset: 0, Limit: 2}))
	assert.Equal(t, []string{"e"}, httputil.Slice(items, httputil.Page{Offset: 4, Limit: 2}))
	assert.Equal(t, []string{}, httputil.Slice(items, httputil.Page{Offset: 9, Limit: 2}))
	assert.Equal(t, []string{}, httputil.Slice([]string(nil), httputil.Page{Offset: 0, Limit: 50}))
}
