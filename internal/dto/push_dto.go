package dto

type PushKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// PushSubscribeRequest mirrors the browser PushSubscription.toJSON() shape.
type PushSubscribeRequest struct {
	Endpoint string   `json:"endpoint" validate:"required,url"`
	Keys     PushKeys `json:"keys"`
}

type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type PushKeyResponse struct {
	Available bool   `json:"available"`
	PublicKey string `json:"public_key,omitempty"`
}

// ChannelAuthRequest is posted by websocket clients, form or JSON encoded.
type ChannelAuthRequest struct {
	SocketID    string `json:"socket_id" form:"socket_id" validate:"required"`
	ChannelName string `json:"channel_name" form:"channel_name" validate:"required"`
}

type ChannelAuthResponse struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}
