package h5p

import (
	"github.com/alnah/go-mdcards/internal/validation"
)

var validate = validation.New()

// Card is one question/answer pair of a deck.
type Card struct {
	Question string `json:"question" yaml:"question" validate:"notblank"`
	Answer   string `json:"answer" yaml:"answer" validate:"notblank"`
}

// ValidateCards checks that cards is non-empty and every card has both sides.
func ValidateCards(cards []Card) error {
	if len(cards) == 0 {
		return ErrEmptyDeck
	}
	for i := range cards {
		if err := validate.Struct(cards[i]); err != nil {
			return &CardError{Index: i, Field: validation.FirstField(err)}
		}
	}
	return nil
}
