package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 100
	MinSize     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Size   int
	Offset int
}

// Parse extracts and validates page/size from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultSize)))

	if page < 1 {
		page = DefaultPage
	}
	if size < MinSize {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Params{
		Page:   page,
		Size:   size,
		Offset: (page - 1) * size,
	}
}
