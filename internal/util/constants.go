package util

const (
	QuizQuestionCount = 5
	CoinsPerCorrect   = 10
	MaxCoinsPerQuiz   = QuizQuestionCount * CoinsPerCorrect
)

const (
	HistoryLimit            = 10
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

var QuizOptionLetters = []string{"A", "B", "C", "D"}
