package normalize

import (
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

const (
	DefaultProfile = "default"
	DefaultUptime  = "0s"
	DefaultMTU     = 1500
	Unknown        = "Unknown"
)

var (
	fieldID            = NewField(".id", "session-id", "id")
	fieldName          = NewField("name")
	fieldActiveName    = NewField("name", "user", "user-name")
	fieldProfile       = NewField("profile")
	fieldUptime        = NewField("uptime")
	fieldBytesIn       = NewField("bytes-in")
	fieldBytesOut      = NewField("bytes-out")
	fieldPacketsIn     = NewField("packets-in")
	fieldPacketsOut    = NewField("packets-out")
	fieldMACAddress    = NewField("mac-address")
	fieldLoginBy       = NewField("login-by")
	fieldActualMTU     = NewField("actual-mtu")
	fieldAddress       = NewField("address")
	fieldLimitBytesIn  = NewField("limit-bytes-in")
	fieldLimitBytesOut = NewField("limit-bytes-out")
	fieldLimitUptime   = NewField("limit-uptime")

	fieldIdentity      = NewField("name", "identity")
	fieldVersion       = NewField("version")
	fieldArchitecture  = NewField("architecture-name", "architecture")
	fieldBoardName     = NewField("board-name")
	fieldCPUFrequency  = NewField("cpu-frequency")
	fieldCPUCount      = NewField("cpu-count")
	fieldCPULoad       = NewField("cpu-load")
	fieldFreeMemory    = NewField("free-memory")
	fieldTotalMemory   = NewField("total-memory")
	fieldFreeHDDSpace  = NewField("free-hdd-space")
	fieldTotalHDDSpace = NewField("total-hdd-space")
)

// SessionID returns the router id of an active session or account record.
func SessionID(rec model.Record) string {
	return StringField(rec, fieldID, "")
}

// ProfileName returns the name of a profile record, "default" when missing.
func ProfileName(rec model.Record) string {
	return StringField(rec, fieldName, DefaultProfile)
}

// ToHotspotUser maps one /ip/hotspot/active row.
func ToHotspotUser(rec model.Record) model.HotspotUser {
	return model.HotspotUser{
		Name:          StringField(rec, fieldActiveName, ""),
		Profile:       StringField(rec, fieldProfile, DefaultProfile),
		Uptime:        StringField(rec, fieldUptime, DefaultUptime),
		BytesIn:       IntField(rec, fieldBytesIn, 0),
		BytesOut:      IntField(rec, fieldBytesOut, 0),
		PacketsIn:     IntField(rec, fieldPacketsIn, 0),
		PacketsOut:    IntField(rec, fieldPacketsOut, 0),
		MACAddress:    StringField(rec, fieldMACAddress, ""),
		LoginBy:       StringField(rec, fieldLoginBy, ""),
		ActualMTU:     IntField(rec, fieldActualMTU, DefaultMTU),
		Address:       StringField(rec, fieldAddress, ""),
		SessionID:     SessionID(rec),
		LimitBytesIn:  IntField(rec, fieldLimitBytesIn, 0),
		LimitBytesOut: IntField(rec, fieldLimitBytesOut, 0),
		LimitUptime:   StringField(rec, fieldLimitUptime, ""),
	}
}

// ToUserProfile maps one /ip/hotspot/user row. Only name and profile are
// always set; counters stay nil when the router omits them.
func ToUserProfile(rec model.Record) model.UserProfile {
	return model.UserProfile{
		ID:             SessionID(rec),
		Name:           StringField(rec, fieldName, ""),
		DefaultProfile: StringField(rec, fieldProfile, DefaultProfile),
		Address:        OptionalString(rec, fieldAddress),
		MACAddress:     OptionalString(rec, fieldMACAddress),
		Uptime:         OptionalString(rec, fieldUptime),
		BytesIn:        OptionalInt(rec, fieldBytesIn),
		BytesOut:       OptionalInt(rec, fieldBytesOut),
		PacketsIn:      OptionalInt(rec, fieldPacketsIn),
		PacketsOut:     OptionalInt(rec, fieldPacketsOut),
	}
}

// ToSystemInfo merges /system/resource and /system/identity rows. Either row
// may be nil.
func ToSystemInfo(resource, identity model.Record, fetchedAt time.Time) model.RouterSystemInfo {
	return model.RouterSystemInfo{
		Identity:      StringField(identity, fieldIdentity, Unknown),
		Uptime:        StringField(resource, fieldUptime, Unknown),
		Version:       StringField(resource, fieldVersion, Unknown),
		Architecture:  StringField(resource, fieldArchitecture, Unknown),
		BoardName:     StringField(resource, fieldBoardName, Unknown),
		CPUFrequency:  StringField(resource, fieldCPUFrequency, Unknown),
		CPUCount:      nonNegative(IntField(resource, fieldCPUCount, 0)),
		CPULoad:       nonNegative(IntField(resource, fieldCPULoad, 0)),
		FreeMemory:    nonNegative(IntField(resource, fieldFreeMemory, 0)),
		TotalMemory:   nonNegative(IntField(resource, fieldTotalMemory, 0)),
		FreeHDDSpace:  nonNegative(IntField(resource, fieldFreeHDDSpace, 0)),
		TotalHDDSpace: nonNegative(IntField(resource, fieldTotalHDDSpace, 0)),
		FetchedAt:     fetchedAt.UTC(),
	}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
