package v1alpha1

import (
	"errors"
	"strings"
)

// MemberKind identifies the principal type carried by a member string.
type MemberKind string

const (
	UserKind           MemberKind = "user"
	GroupKind          MemberKind = "group"
	ServiceAccountKind MemberKind = "serviceAccount"
	DomainKind         MemberKind = "domain"

	// ShortcodeKind marks a bare token standing in for a platform-managed
	// service identity. Shortcodes carry no ":" separator and are resolved
	// against the service agent table during plan composition.
	ShortcodeKind MemberKind = "shortcode"
)

var ErrInvalidMember = errors.New("invalid member format")

// ParseMember classifies a member string and returns its kind and bare value.
// Prefixed members ("user:jane@example.com") must use a known prefix; a token
// without a separator is classified as a shortcode and validated later, once
// the service agent table is in scope.
func ParseMember(member string) (MemberKind, string, error) {
	prefix, value, found := strings.Cut(member, ":")
	if !found {
		if member == "" {
			return "", "", ErrInvalidMember
		}
		return ShortcodeKind, member, nil
	}

	switch MemberKind(prefix) {
	case UserKind, GroupKind, ServiceAccountKind, DomainKind:
		if value == "" {
			return "", "", ErrInvalidMember
		}
		return MemberKind(prefix), value, nil
	}
	return "", "", ErrInvalidMember
}
