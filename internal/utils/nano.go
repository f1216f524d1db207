package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var NanoidSize = 32

func NanoID() string {
	return gonanoid.MustGenerate(nanoidAlphabet, NanoidSize)
}

// IsNanoID reports whether id could have been produced by NanoID.
func IsNanoID(id string) bool {
	if len(id) != NanoidSize {
		return false
	}

	for _, r := range id {
		if !strings.ContainsRune(nanoidAlphabet, r) {
			return false
		}
	}

	return true
}
