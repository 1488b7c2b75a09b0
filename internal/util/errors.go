package util

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrArticleNotFound    = errors.New("article not found")
	ErrBriefingNotFound   = errors.New("briefing not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizUnavailable    = errors.New("quiz questions unavailable")
	ErrGenerationFailed   = errors.New("unable to enhance article at this time")
	ErrStorageUnavailable = errors.New("database unavailable")
)

// IsNotFound 所有“不存在”类错误统一映射为 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrArticleNotFound) ||
		errors.Is(err, ErrBriefingNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuizUnavailable)
}
