package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := paramsFor(t, "")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultSize, p.Size)
	assert.Equal(t, 0, p.Offset)
}

func TestParseExplicitValues(t *testing.T) {
	p := paramsFor(t, "page=3&size=10")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Size)
	assert.Equal(t, 20, p.Offset)
}

func TestParseClampsInvalidValues(t *testing.T) {
	p := paramsFor(t, "page=-1&size=0")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultSize, p.Size)

	p = paramsFor(t, "size=9999")
	assert.Equal(t, MaxSize, p.Size)

	p = paramsFor(t, "page=abc&size=xyz")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultSize, p.Size)
}
