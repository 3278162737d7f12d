package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	detailed := NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for: Lamp")

	assert.True(t, errors.Is(detailed, ErrInsufficientStock))
	assert.True(t, errors.Is(fmt.Errorf("checkout: %w", detailed), ErrInsufficientStock))
	assert.False(t, errors.Is(detailed, ErrNotFound))
	assert.Equal(t, "Insufficient stock for: Lamp", detailed.Error())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 41, 2, 20)

	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(41), p.Total)
	assert.Equal(t, 20, DefaultFilter().PageSize)
	assert.Equal(t, 20, Filter{Page: 2, PageSize: 20}.Offset())
	assert.Equal(t, 0, Filter{}.Offset())
}
