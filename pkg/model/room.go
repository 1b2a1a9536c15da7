package model

type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomDeluxe   RoomType = "deluxe"
	RoomSuite    RoomType = "suite"
	RoomFamily   RoomType = "family"
	RoomVIP      RoomType = "vip"
)

// Room is catalog data maintained by back-office tooling. The reservation
// engine only ever reads it, chiefly for NightlyRate.
type Room struct {
	ID           string   `json:"id,omitempty" bson:"_id,omitempty"`
	Number       int      `json:"number" bson:"number" validate:"required,min=1"`
	Type         RoomType `json:"type" bson:"type" validate:"required,oneof=standard deluxe suite family vip"`
	NightlyRate  float64  `json:"nightly_rate" bson:"nightly_rate" validate:"min=0"`
	Capacity     int      `json:"capacity" bson:"capacity" validate:"required,min=1"`
	Availability bool     `json:"availability" bson:"availability"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty"`
}
