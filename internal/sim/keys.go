package sim

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the simulator's keyboard bindings.
type keyMap struct {
	Tap         key.Binding
	BatteryUp   key.Binding
	BatteryDown key.Binding
	Plug        key.Binding
	Charge      key.Binding
	Bluetooth   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Tap: key.NewBinding(
			key.WithKeys("t", " "),
			key.WithHelp("t/space", "Tap"),
		),
		BatteryUp: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+", "Battery +10%"),
		),
		BatteryDown: key.NewBinding(
			key.WithKeys("-", "down"),
			key.WithHelp("-", "Battery -10%"),
		),
		Plug: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Plug/unplug"),
		),
		Charge: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Toggle charging"),
		),
		Bluetooth: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Toggle bluetooth"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.Bluetooth, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tap, k.Bluetooth},
		{k.BatteryUp, k.BatteryDown, k.Plug, k.Charge},
		{k.Help, k.Quit},
	}
}
