// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"errors"

	"github.com/commoncode/coffeebot/wordlist"
)

var (
	ErrInvalidRequestKey = errors.New("invalid request key")
	ErrInvalidAdminKey   = errors.New("invalid admin key")
)

// LinkCodeWords is the number of words in a workspace link code.
const LinkCodeWords = 4

// VerifyRequestKey checks the ?key= value Slack presents against the
// configured key. An empty configured key rejects everything; the bot
// must never run open to the internet.
func VerifyRequestKey(got, want string) error {
	if want == "" || !hmac.Equal([]byte(got), []byte(want)) {
		return ErrInvalidRequestKey
	}
	return nil
}

// VerifyAdminKey checks an `/coffee auth <key>` attempt. An empty
// configured key disables admin identification entirely.
func VerifyAdminKey(got, want string) error {
	if want == "" || !hmac.Equal([]byte(got), []byte(want)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateLinkCode creates a fresh multi-word link code, e.g.
// "cedar-otter-quartz-dawn".
func GenerateLinkCode() (string, error) {
	return wordlist.Words(LinkCodeWords)
}
