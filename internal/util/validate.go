package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct 校验失败时返回包装了 ErrInvalidInput 的错误
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func IsQuizOption(option string) bool {
	for _, letter := range QuizOptionLetters {
		if option == letter {
			return true
		}
	}
	return false
}
