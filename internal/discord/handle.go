// Copyright (c) 2026 Rolegate. All rights reserved.

package discord

import (
	"errors"
	"regexp"
	"strings"
)

// # Handle Grammar

// HandleKind discriminates the three accepted handle shapes.
type HandleKind string

const (
	// HandleID is a bare snowflake ("123456789012345678").
	HandleID HandleKind = "user_id"

	// HandleUsername is a bare username ("some_user").
	HandleUsername HandleKind = "username"

	// HandleTag is the legacy "username#1234" form.
	HandleTag HandleKind = "username_with_discriminator"
)

var (
	snowflakeRegex     = regexp.MustCompile(`^\d{17,19}$`)
	usernameRegex      = regexp.MustCompile(`^[A-Za-z0-9_.]{2,32}$`)
	discriminatorRegex = regexp.MustCompile(`^\d{4}$`)
)

// ErrInvalidHandle is returned by [ParseHandle] when the input matches none
// of the three handle grammars.
var ErrInvalidHandle = errors.New("discord: invalid handle format")

// Handle is a free-form user identifier normalized into exactly one typed
// reference.
type Handle struct {
	Kind HandleKind

	// UserID is set only for [HandleID].
	UserID string

	// Username is set for [HandleUsername] and [HandleTag].
	Username string

	// Discriminator is set only for [HandleTag].
	Discriminator string
}

// IsValidSnowflake reports whether the string is a 17-19 digit snowflake.
func IsValidSnowflake(id string) bool {
	return snowflakeRegex.MatchString(id)
}

// IsValidUsername reports whether the string is a syntactically valid
// username (2-32 characters from [A-Za-z0-9_.]).
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// IsValidDiscriminator reports whether the string is a legacy 4-digit
// discriminator.
func IsValidDiscriminator(discriminator string) bool {
	return discriminatorRegex.MatchString(discriminator)
}

/*
ParseHandle normalizes a raw user-supplied identifier into a [Handle].

Description: The input is trimmed and matched against the three grammars in
precedence order. A 17-19 digit string is always a snowflake, never a
username — digit strings of that length are not valid usernames by platform
policy. A string containing exactly one '#' must validate as
username#discriminator in both parts; there is no fallback to treating it as
a bare username. Everything else must validate as a bare username.

Parameters:
  - raw: free-form handle string

Returns:
  - Handle: exactly one populated variant
  - error: [ErrInvalidHandle] when no grammar matches
*/
func ParseHandle(raw string) (Handle, error) {
	trimmed := strings.TrimSpace(raw)

	// 1. Pure snowflake wins over any username interpretation.
	if IsValidSnowflake(trimmed) {
		return Handle{Kind: HandleID, UserID: trimmed}, nil
	}

	// 2. Exactly one '#' forces the tag grammar; a malformed tag fails the
	// whole parse rather than degrading to a username.
	if strings.Contains(trimmed, "#") {
		parts := strings.Split(trimmed, "#")
		if len(parts) != 2 {
			return Handle{}, ErrInvalidHandle
		}
		username, discriminator := parts[0], parts[1]
		if !IsValidUsername(username) || !IsValidDiscriminator(discriminator) {
			return Handle{}, ErrInvalidHandle
		}
		return Handle{Kind: HandleTag, Username: username, Discriminator: discriminator}, nil
	}

	// 3. Bare username.
	if IsValidUsername(trimmed) {
		return Handle{Kind: HandleUsername, Username: trimmed}, nil
	}

	return Handle{}, ErrInvalidHandle
}

// IsValidHandle reports whether [ParseHandle] would succeed for the input.
// The two always agree; this is the cheap pre-validation predicate used by
// the webhook surface before any resolution work starts.
func IsValidHandle(raw string) bool {
	_, err := ParseHandle(raw)
	return err == nil
}
