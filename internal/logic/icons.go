package logic

// LowBatteryLevel is the level at or below which the battery icon stays visible.
const LowBatteryLevel = 30

// batteryTier pairs a minimum level with its icon.
type batteryTier struct {
	Level int
	Icon  IconID
}

// batteryTiers is sorted by ascending level.
var batteryTiers = []batteryTier{
	{10, IconBattery10},
	{20, IconBattery20},
	{30, IconBattery30},
	{40, IconBattery40},
	{50, IconBattery50},
	{60, IconBattery60},
	{70, IconBattery70},
	{80, IconBattery80},
	{90, IconBattery90},
	{100, IconBattery100},
}

// TierIcon returns the icon of the highest tier not above level.
// Levels below the lowest tier clamp to it, levels above 100 clamp to 100.
func TierIcon(level int) IconID {
	icon := batteryTiers[0].Icon
	for _, t := range batteryTiers {
		if t.Level > level {
			break
		}
		icon = t.Icon
	}
	return icon
}

// SelectBatteryIcon picks the battery icon.
//
// Charging always shows the charging icon. Plugged but not charging shows
// the full icon while the overlay is hidden; with the overlay showing the
// real tier is displayed so a tap reveals the actual charge.
func SelectBatteryIcon(s BatteryState, overlay Visibility) IconID {
	if s.Plugged && s.Charging {
		return IconBatteryCharging
	}
	if s.Plugged && !overlay.Visible() {
		return IconBattery100
	}
	return TierIcon(s.Level)
}

// BatteryIconHidden reports whether the battery icon should be hidden.
// It is shown when plugged, when low, or while the overlay is showing.
func BatteryIconHidden(s BatteryState, overlay Visibility) bool {
	switch {
	case s.Plugged:
		return false
	case s.Level <= LowBatteryLevel:
		return false
	case overlay.Visible():
		return false
	default:
		return true
	}
}

// SelectBluetoothIcon maps link state directly to an icon.
func SelectBluetoothIcon(connected bool) IconID {
	if connected {
		return IconBluetoothConnected
	}
	return IconBluetoothDisconnected
}

// BluetoothIconHidden reports whether the bluetooth icon should be hidden.
// A disconnected icon stays on screen even without the overlay.
func BluetoothIconHidden(connected bool, overlay Visibility) bool {
	if overlay.Visible() {
		return false
	}
	return connected
}

// DateHidden reports whether the date window and text should be hidden.
// With hideDate unset the date is permanently visible.
func DateHidden(hideDate bool, overlay Visibility) bool {
	if overlay.Visible() {
		return false
	}
	return hideDate
}

// BackgroundIcon selects the background art variant.
func BackgroundIcon(badge bool) IconID {
	if badge {
		return IconBackgroundBadge
	}
	return IconBackgroundNoBadge
}
