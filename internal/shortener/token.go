package shortener

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/jaevor/go-nanoid"
)

const (
	DefaultTokenLength = 7
	MinTokenLength     = 4
	MaxTokenLength     = 11 // 62^11 > 2^64
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenGenerator derives a short token from the last URL segment.
// Attempt is zero on the first try and grows by one after every collision.
// An empty token means no token can be produced for segment.
type TokenGenerator interface {
	Generate(segment string, attempt int) string
}

// GeneratorFunc adapts a function to TokenGenerator.
type GeneratorFunc func(segment string, attempt int) string

func (f GeneratorFunc) Generate(segment string, attempt int) string {
	return f(segment, attempt)
}

// HashGenerator produces deterministic base62 tokens from an xxhash digest.
// Attempts after the first are salted with the attempt number.
type HashGenerator struct {
	length int
}

// NewHashGenerator creates a hash-based generator producing tokens of the given length.
func NewHashGenerator(length int) *HashGenerator {
	return &HashGenerator{length: clampLength(length)}
}

func (g *HashGenerator) Generate(segment string, attempt int) string {
	if segment == "" {
		return ""
	}

	input := segment
	if attempt > 0 {
		input = segment + "#" + strconv.Itoa(attempt)
	}

	return encode(xxhash.Sum64String(input), g.length)
}

func encode(num uint64, length int) string {
	base := uint64(len(alphabet))
	out := make([]byte, length)

	for i := length - 1; i >= 0; i-- {
		out[i] = alphabet[num%base]
		num /= base
	}

	return string(out)
}

// RandomGenerator produces nanoid tokens. It ignores the attempt number since
// every call already yields a fresh token.
type RandomGenerator struct {
	next func() string
}

// NewRandomGenerator creates a nanoid-based generator producing tokens of the given length.
func NewRandomGenerator(length int) (*RandomGenerator, error) {
	next, err := nanoid.Standard(clampLength(length))
	if err != nil {
		return nil, err
	}

	return &RandomGenerator{next: next}, nil
}

func (g *RandomGenerator) Generate(segment string, _ int) string {
	if segment == "" {
		return ""
	}

	return g.next()
}

func clampLength(length int) int {
	switch {
	case length <= 0:
		return DefaultTokenLength
	case length < MinTokenLength:
		return MinTokenLength
	case length > MaxTokenLength:
		return MaxTokenLength
	default:
		return length
	}
}
