package drill

import "strings"

// Kind tags what a drill key addresses.
type Kind string

const (
	KindService       Kind = "service"
	KindCategory      Kind = "category"
	KindStaff         Kind = "staff"
	KindStatus        Kind = "status"
	KindChannel       Kind = "channel"
	KindClientType    Kind = "clientType"
	KindPaymentMethod Kind = "paymentMethod"
	KindPetSize       Kind = "petSize"
	KindDay           Kind = "day"
	KindWeek          Kind = "week"
	KindMonth         Kind = "month"
	KindDayStaff      Kind = "dayStaff"
	KindCampaign      Kind = "campaign"
	KindInventory     Kind = "inventory"
	KindTxn           Kind = "txn"
)

// Key identifies the row-level records behind an aggregate number. It is a
// tagged value rather than an ad hoc string; the string form exists only for
// transport and round-trips through Parse.
type Key struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.Value
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Kind == "" && k.Value == ""
}

// Parse decodes the transport form "kind:value". The value may itself
// contain colons; only the first separator splits.
func Parse(s string) (Key, bool) {
	kind, value, found := strings.Cut(s, ":")
	if !found || kind == "" {
		return Key{}, false
	}

	return Key{Kind: Kind(kind), Value: value}, true
}
