package order

import (
	"errors"

	"github.com/tably/pos-backend/internal/models"
)

// ErrLineOutOfRange is returned when an edit targets a line index that does
// not exist in the sequence.
var ErrLineOutOfRange = errors.New("order line index out of range")

// ApplyDelta adjusts the quantity of the line at index by delta and returns
// the new sequence. A resulting quantity <= 0 removes the line entirely;
// this is the only way a line ever leaves an order. All other fields are
// unchanged. The input slice is not mutated.
func ApplyDelta(lines []models.OrderLine, index, delta int) ([]models.OrderLine, error) {
	if index < 0 || index >= len(lines) {
		return nil, ErrLineOutOfRange
	}

	edited := models.CloneLines(lines)
	edited[index].Quantity += delta

	if edited[index].Quantity <= 0 {
		edited = append(edited[:index], edited[index+1:]...)
	}

	return edited, nil
}
