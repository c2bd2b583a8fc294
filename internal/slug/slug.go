package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// 採番リトライの上限（base, base-2, ... base-20）
const MaxAttempts = 20

// 正規化した結果が空
var ErrEmptyName = errors.New("name yields empty slug")

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Normalizeは表示名からslugの基底を作る
// 小文字化→trim→空白の連続はハイフン1つ→[a-z0-9-]以外は除去
func Normalize(name string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = invalidRe.ReplaceAllString(s, "")
	if s == "" {
		return "", ErrEmptyName
	}
	return s, nil
}

// Candidateはattempt回目の候補を返す（1回目は基底そのもの、2回目以降は-2, -3, ...）
func Candidate(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
