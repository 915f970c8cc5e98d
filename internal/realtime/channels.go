package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	prefixPrivateApplication  = "private-application-"
	prefixPresenceApplication = "presence-application-"
	prefixPrivateUser         = "private-user-"
)

type ChannelKind int

const (
	ChannelUnknown ChannelKind = iota
	ChannelApplication
	ChannelPresenceApplication
	ChannelUser
)

var ErrUnknownChannel = errors.New("unsupported channel")

func ApplicationChannel(applicationID uuid.UUID) string {
	return prefixPrivateApplication + applicationID.String()
}

func UserChannel(userID uuid.UUID) string {
	return prefixPrivateUser + userID.String()
}

// ParseChannel splits a channel name into its kind and the id it is scoped to.
func ParseChannel(name string) (ChannelKind, uuid.UUID, error) {
	var kind ChannelKind
	var raw string
	switch {
	case strings.HasPrefix(name, prefixPrivateApplication):
		kind, raw = ChannelApplication, strings.TrimPrefix(name, prefixPrivateApplication)
	case strings.HasPrefix(name, prefixPresenceApplication):
		kind, raw = ChannelPresenceApplication, strings.TrimPrefix(name, prefixPresenceApplication)
	case strings.HasPrefix(name, prefixPrivateUser):
		kind, raw = ChannelUser, strings.TrimPrefix(name, prefixPrivateUser)
	default:
		return ChannelUnknown, uuid.Nil, ErrUnknownChannel
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ChannelUnknown, uuid.Nil, ErrUnknownChannel
	}
	return kind, id, nil
}

// Signer produces Pusher-compatible channel authorization strings.
type Signer struct {
	key    string
	secret []byte
}

func NewSigner(key, secret string) *Signer {
	return &Signer{key: key, secret: []byte(secret)}
}

func (s *Signer) Enabled() bool {
	return s.key != "" && len(s.secret) > 0
}

// Sign returns "key:hex(hmac_sha256(secret, socket_id:channel[:channel_data]))".
func (s *Signer) Sign(socketID, channel, channelData string) string {
	toSign := socketID + ":" + channel
	if channelData != "" {
		toSign += ":" + channelData
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(toSign))
	return s.key + ":" + hex.EncodeToString(mac.Sum(nil))
}
