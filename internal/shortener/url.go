package shortener

import "strings"

// prefixSegments is the number of leading "/" segments kept verbatim
// (scheme, empty authority separator, host).
const prefixSegments = 3

// SplitURL splits a full URL into its stable prefix and the last segment,
// which is the input for token generation.
//
//	SplitURL("http://example.com/foo/bar") // "http://example.com/", "bar"
func SplitURL(fullURL string) (prefix, segment string, err error) {
	if fullURL == "" {
		return "", "", ErrMalformedURL
	}

	parts := strings.Split(fullURL, "/")
	if len(parts) < 2 {
		return "", "", ErrMalformedURL
	}

	var b strings.Builder

	for _, part := range parts[:min(prefixSegments, len(parts))] {
		b.WriteString(part)
		b.WriteByte('/')
	}

	return b.String(), parts[len(parts)-1], nil
}

// LooksShortened reports whether shortURL already carries a token after its
// stable prefix. It is meant for input decoding only; the resolver trusts
// Mapping.Shortened.
func LooksShortened(shortURL string) bool {
	parts := strings.Split(shortURL, "/")

	return len(parts) > prefixSegments && parts[len(parts)-1] != ""
}
