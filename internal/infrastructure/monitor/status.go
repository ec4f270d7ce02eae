package monitor

import "time"

type Status struct {
	RemoteConfigured bool      `json:"remote_configured"`
	Remote           bool      `json:"remote"`
	Outbox           bool      `json:"outbox"`
	OutboxSize       int       `json:"outbox_size"`
	LastCheck        time.Time `json:"last_check"`
}
