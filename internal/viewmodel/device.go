package viewmodel

import "github.com/mileusna/useragent"

// Device is the coarse device class a page is rendered for.
type Device int

const (
	Desktop Device = iota
	Phone
	Tablet
)

func (d Device) String() string {
	switch d {
	case Phone:
		return "phone"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// ClassifyDevice maps a User-Agent header to a device class. Anything that is
// neither a tablet nor a phone, an empty header included, is a desktop.
func ClassifyDevice(userAgent string) Device {
	if userAgent == "" {
		return Desktop
	}
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Tablet:
		return Tablet
	case ua.Mobile:
		return Phone
	default:
		return Desktop
	}
}
