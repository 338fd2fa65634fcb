package kdbx

// Times holds the creation/modification/access timestamps every group and
// entry carries.
type Times struct {
	CreationTime         *Timestamp `xml:"CreationTime"`
	LastModificationTime *Timestamp `xml:"LastModificationTime"`
	LastAccessTime       *Timestamp `xml:"LastAccessTime"`
	ExpiryTime           *Timestamp `xml:"ExpiryTime"`
	Expires              Flag       `xml:"Expires"`
	UsageCount           int64      `xml:"UsageCount"`
	LocationChanged      *Timestamp `xml:"LocationChanged"`
}

// NewTimes returns a Times with the creation, modification, access and
// location-changed timestamps set to now, no ExpiryTime, and Expires false.
func NewTimes() Times {
	now := Now()
	return Times{
		CreationTime:         &now,
		LastModificationTime: &now,
		LastAccessTime:       &now,
		LocationChanged:      &now,
	}
}
