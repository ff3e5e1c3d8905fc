package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Page is one page of results. Page numbers start at 0.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, page, size int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Page: page, Size: size, Total: total, TotalPages: TotalPages(total, size)}
}

// Normalize clamps page to >= 0 and size to [1, MaxSize], defaulting size.
func Normalize(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return page, size
}

// Offset is the number of rows to skip for page.
func Offset(page, size int) int { return page * size }

func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size > 0 {
		pages++
	}
	return pages
}

// ParseFromRequest reads ?page=&size= from the query string. Unparseable
// values fall back to the defaults.
func ParseFromRequest(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil {
		page = 0
	}
	size, err := strconv.Atoi(c.Query("size", strconv.Itoa(DefaultSize)))
	if err != nil {
		size = DefaultSize
	}
	return Normalize(page, size)
}
