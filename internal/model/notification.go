package model

import (
	"errors"
	"fmt"
	"strings"
)

// NotificationKind selects how a notification is built
type NotificationKind string

const (
	// NotificationKindMessage is a chat message with inline reply and an optional image
	NotificationKindMessage NotificationKind = "msg"

	// NotificationKindGeneric is any other notification
	NotificationKindGeneric NotificationKind = "generic"
)

// PayloadKey is the user-info key that carries the correlation payload
const PayloadKey = "NotificationPayload"

// ErrContractViolation marks a request the UI layer should never have sent
var ErrContractViolation = errors.New("contract violation")

// ContractError names the field that made a request unusable
type ContractError struct {
	Field  string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("invalid notification request: field %q %s", e.Field, e.Reason)
}

// Unwrap lets callers match ErrContractViolation with errors.Is
func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

// NotificationRequest is the typed form of a send-notice call
type NotificationRequest struct {
	Kind     NotificationKind
	Title    string
	Body     string
	Tag      string
	Subtype  string // only set for NotificationKindMessage
	ImageURL string // optional, only used for NotificationKindMessage
}

// Payload returns the correlation string stored with the delivered notification
func (r NotificationRequest) Payload() string {
	return NotificationPayload(r.Tag, r.Subtype)
}

// HasRemoteImage reports whether an image has to be fetched before submission
func (r NotificationRequest) HasRemoteImage() bool {
	return strings.HasPrefix(r.ImageURL, "http://") || strings.HasPrefix(r.ImageURL, "https://")
}

// NotificationPayload joins a tag and a subtype into a payload string
func NotificationPayload(tag, subtype string) string {
	return tag + "/" + subtype
}

// ParseNotificationRequest converts the loosely typed UI mapping into a request.
// Keys: base_type, title, body, tag, type (message subtype), image.
func ParseNotificationRequest(data map[string]any) (NotificationRequest, error) {
	baseType, err := requiredString(data, "base_type")
	if err != nil {
		return NotificationRequest{}, err
	}

	req := NotificationRequest{Kind: NotificationKindGeneric}
	if baseType == string(NotificationKindMessage) {
		req.Kind = NotificationKindMessage
	}

	if req.Title, err = requiredString(data, "title"); err != nil {
		return NotificationRequest{}, err
	}
	if req.Body, err = requiredString(data, "body"); err != nil {
		return NotificationRequest{}, err
	}
	if req.Tag, err = requiredString(data, "tag"); err != nil {
		return NotificationRequest{}, err
	}

	if req.Kind == NotificationKindMessage {
		if req.Subtype, err = requiredString(data, "type"); err != nil {
			return NotificationRequest{}, err
		}
		// Avatars ("icon") are ignored on purpose; only "image" is attached.
		if image, ok := data["image"].(string); ok {
			req.ImageURL = image
		}
	}

	return req, nil
}

func requiredString(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", &ContractError{Field: key, Reason: "is missing"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &ContractError{Field: key, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return value, nil
}

// DeliveredNotification is a notification currently shown by the daemon
type DeliveredNotification struct {
	ID       string
	UserInfo map[string]string
}

// Payload returns the correlation payload, or false if the notification has none
func (n DeliveredNotification) Payload() (string, bool) {
	payload, ok := n.UserInfo[PayloadKey]
	return payload, ok
}

// MatchesTag reports whether payload belongs to the tag prefix.
// The match is segment-aware: "abc" matches "abc" and "abc/1" but not "abcd/2".
// A prefix ending in "/" or an empty prefix falls back to a plain prefix test.
func MatchesTag(payload, prefix string) bool {
	if !strings.HasPrefix(payload, prefix) {
		return false
	}
	if prefix == "" || len(payload) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	return payload[len(prefix)] == '/'
}
