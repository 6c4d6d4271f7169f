package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// Count returns the cl100k_base token count of text. When the encoder
// cannot be built (offline load of the BPE ranks failed), it degrades to
// a rune count so size accounting keeps working.
func Count(text string) int {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})

	if tk == nil {
		return utf8.RuneCountInString(text)
	}
	return len(tk.Encode(text, nil, nil))
}
