package model

import "time"

// Record is one loosely typed row returned by the router.
type Record map[string]any

// ConnectionStatus is the client-side state of the management session.
type ConnectionStatus string

const (
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusConnecting   ConnectionStatus = "connecting"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// HotspotUser is a client currently logged in through the hotspot.
type HotspotUser struct {
	Name          string `json:"name"`
	Profile       string `json:"profile"`
	Uptime        string `json:"uptime"`
	BytesIn       int64  `json:"bytes_in"`
	BytesOut      int64  `json:"bytes_out"`
	PacketsIn     int64  `json:"packets_in"`
	PacketsOut    int64  `json:"packets_out"`
	MACAddress    string `json:"mac_address"`
	LoginBy       string `json:"login_by"`
	ActualMTU     int64  `json:"actual_mtu"`
	Address       string `json:"address"`
	SessionID     string `json:"session_id"`
	LimitBytesIn  int64  `json:"limit_bytes_in"`
	LimitBytesOut int64  `json:"limit_bytes_out"`
	LimitUptime   string `json:"limit_uptime"`
}

// UserProfile is a registered hotspot account, connected or not.
type UserProfile struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	DefaultProfile string  `json:"default_profile"`
	Address        *string `json:"address,omitempty"`
	MACAddress     *string `json:"mac_address,omitempty"`
	Uptime         *string `json:"uptime,omitempty"`
	BytesIn        *int64  `json:"bytes_in,omitempty"`
	BytesOut       *int64  `json:"bytes_out,omitempty"`
	PacketsIn      *int64  `json:"packets_in,omitempty"`
	PacketsOut     *int64  `json:"packets_out,omitempty"`
}

// RouterSystemInfo is a health snapshot of the router.
type RouterSystemInfo struct {
	Identity      string    `json:"identity"`
	Uptime        string    `json:"uptime"`
	Version       string    `json:"version"`
	Architecture  string    `json:"architecture"`
	BoardName     string    `json:"board_name"`
	CPUFrequency  string    `json:"cpu_frequency"`
	CPUCount      int64     `json:"cpu_count"`
	CPULoad       int64     `json:"cpu_load"`
	FreeMemory    int64     `json:"free_memory"`
	TotalMemory   int64     `json:"total_memory"`
	FreeHDDSpace  int64     `json:"free_hdd_space"`
	TotalHDDSpace int64     `json:"total_hdd_space"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// CreateUserInput describes a new hotspot account.
type CreateUserInput struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Profile       string `json:"profile"`
	LimitUptime   string `json:"limit_uptime,omitempty"`
	LimitBytesIn  int64  `json:"limit_bytes_in,omitempty"`
	LimitBytesOut int64  `json:"limit_bytes_out,omitempty"`
}
