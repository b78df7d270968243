package face

import "github.com/sweeney/watchface/internal/logic"

// view pushes derived icons and visibility to the screen. It holds no state
// of its own; every call recomputes from the FaceState it is given.
type view struct {
	screen Screen
	cfg    Config
}

func (v view) drawBatteryIcon(s *FaceState) {
	v.screen.SetBitmap(ElementBattery, logic.SelectBatteryIcon(s.Battery, s.Overlay))
	v.screen.SetHidden(ElementBattery, logic.BatteryIconHidden(s.Battery, s.Overlay))
}

func (v view) drawBluetoothIcon(s *FaceState) {
	v.screen.SetBitmap(ElementBluetooth, logic.SelectBluetoothIcon(s.Bluetooth.Connected))
	v.screen.SetHidden(ElementBluetooth, logic.BluetoothIconHidden(s.Bluetooth.Connected, s.Overlay))
}

func (v view) drawDate(s *FaceState) {
	s.DateText = FormatDate(s.Time)
	v.screen.SetText(ElementDateText, s.DateText)
}

func (v view) applyDateVisibility(s *FaceState) {
	hidden := logic.DateHidden(v.cfg.HideDate, s.Overlay)
	v.screen.SetHidden(ElementDateText, hidden)
	v.screen.SetHidden(ElementDateWindow, hidden)
}
