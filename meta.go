package kdbx

// MemoryProtection records which standard entry fields are, by
// convention, stored Protected.
type MemoryProtection struct {
	ProtectTitle    Flag `xml:"ProtectTitle"`
	ProtectUserName Flag `xml:"ProtectUserName"`
	ProtectPassword Flag `xml:"ProtectPassword"`
	ProtectURL      Flag `xml:"ProtectURL"`
	ProtectNotes    Flag `xml:"ProtectNotes"`
}

// CustomIcon is a user-supplied icon, referenced by group/entry
// CustomIconUUID fields.
type CustomIcon struct {
	UUID ID     `xml:"UUID"`
	Data string `xml:"Data"`
}

// Meta carries database-wide settings and bookkeeping.
type Meta struct {
	Generator                  string           `xml:"Generator"`
	SettingsChanged             *Timestamp      `xml:"SettingsChanged"`
	HeaderHash                  string           `xml:"HeaderHash,omitempty"`
	DatabaseName                string           `xml:"DatabaseName"`
	DatabaseNameChanged          *Timestamp      `xml:"DatabaseNameChanged"`
	DatabaseDescription          string           `xml:"DatabaseDescription"`
	DatabaseDescriptionChanged   *Timestamp      `xml:"DatabaseDescriptionChanged"`
	DefaultUserName              string           `xml:"DefaultUserName"`
	DefaultUserNameChanged       *Timestamp      `xml:"DefaultUserNameChanged"`
	MaintenanceHistoryDays       int64            `xml:"MaintenanceHistoryDays"`
	Color                        string           `xml:"Color"`
	MasterKeyChanged             *Timestamp      `xml:"MasterKeyChanged"`
	MasterKeyChangeRec           int64            `xml:"MasterKeyChangeRec"`
	MasterKeyChangeForce         int64            `xml:"MasterKeyChangeForce"`
	MemoryProtection             MemoryProtection `xml:"MemoryProtection"`
	CustomIcons                  []CustomIcon     `xml:"CustomIcons>Icon"`
	RecycleBinEnabled            Flag             `xml:"RecycleBinEnabled"`
	RecycleBinUUID               ID               `xml:"RecycleBinUUID"`
	RecycleBinChanged            *Timestamp      `xml:"RecycleBinChanged"`
	EntryTemplatesGroup          string           `xml:"EntryTemplatesGroup"`
	EntryTemplatesGroupChanged   *Timestamp      `xml:"EntryTemplatesGroupChanged"`
	HistoryMaxItems              int64            `xml:"HistoryMaxItems"`
	HistoryMaxSize               int64            `xml:"HistoryMaxSize"`
	LastSelectedGroup            string           `xml:"LastSelectedGroup"`
	LastTopVisibleGroup          string           `xml:"LastTopVisibleGroup"`
	CustomData                   []CustomDataItem `xml:"CustomData>Item"`
}

// NewMeta returns a Meta with sensible defaults: now timestamps, a 10-item
// entry history cap, and a 6 MiB history size cap.
func NewMeta() *Meta {
	now := Now()
	return &Meta{
		SettingsChanged:            &now,
		DatabaseNameChanged:        &now,
		DatabaseDescriptionChanged: &now,
		DefaultUserNameChanged:     &now,
		MasterKeyChanged:           &now,
		RecycleBinChanged:          &now,
		EntryTemplatesGroupChanged: &now,
		MasterKeyChangeRec:         -1,
		MasterKeyChangeForce:       -1,
		HistoryMaxItems:            10,
		HistoryMaxSize:             6291456,
		MaintenanceHistoryDays:     365,
	}
}
