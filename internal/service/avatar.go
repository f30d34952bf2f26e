package service

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const gravatarBaseURL = "https://www.gravatar.com/avatar/"

// AvatarURL derives the Gravatar URL for an email address.
// The same email always yields the same URL.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")

	return gravatarBaseURL + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
