package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/watchface/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"clock": func(h, m int) string {
		return fmt.Sprintf("%02d:%02d", h, m)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Watch Face</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.showing { color: green; font-weight: bold; }
.hidden { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
#face { image-rendering: pixelated; width: 288px; height: 336px; border: 8px solid #222; border-radius: 12px; }
</style>
</head>
<body>
<h1>Watch Face</h1>

{{if .HasFrame}}<p><img id="face" src="/face.png" alt="current face"></p>{{end}}
{{if .HasTap}}<form method="post" action="/tap" id="tap-form"><button type="submit">Tap</button></form>{{end}}

<h2>Face</h2>
<table>
<tr><th>Time</th><td>{{clock .Face.Time.Hour .Face.Time.Minute}}</td></tr>
<tr><th>Date</th><td>{{.Face.DateText}}{{if .Face.DateHidden}} (hidden){{end}}</td></tr>
<tr><th>Overlay</th><td class="{{if eq (stateOrUnknown (printf "%s" .Face.Overlay)) "SHOWING"}}showing{{else if eq (stateOrUnknown (printf "%s" .Face.Overlay)) "HIDDEN"}}hidden{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Face.Overlay)}}</td></tr>
<tr><th>Battery</th><td>{{.Face.Battery.Level}}%{{if .Face.Battery.Charging}} charging{{else if .Face.Battery.Plugged}} plugged{{end}}</td></tr>
<tr><th>Battery icon</th><td>{{.Face.BatteryIcon}}{{if .Face.BatteryHidden}} (hidden){{end}}</td></tr>
<tr><th>Bluetooth</th><td class="{{if .Face.Bluetooth.Connected}}connected{{else}}disconnected{{end}}">{{if .Face.Bluetooth.Connected}}connected{{else}}disconnected{{end}}{{if .Face.Bluetooth.AlreadyVibrated}} (alerted){{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
{{if .LastNotice}}<tr><th>Last notice</th><td>{{.LastNotice}} at {{.LastNoticeAt.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Source</th><td>{{.Config.Source}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Prefix</th><td>{{.Config.Prefix}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Taps</th><td>{{.Face.Counts.Taps}}</td></tr>
<tr><th>Overlay shows</th><td>{{.Face.Counts.OverlayShows}}</td></tr>
<tr><th>Overlay hides</th><td>{{.Face.Counts.OverlayHides}}</td></tr>
<tr><th>Alerts</th><td>{{.Face.Counts.Alerts}}</td></tr>
<tr><th>Pulses</th><td>{{.Face.Counts.Pulses}}</td></tr>
<tr><th>Redraws</th><td>{{.Face.Counts.Redraws}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Badge</th><td>{{if .Config.Badge}}yes{{else}}no{{end}}</td></tr>
<tr><th>Hide date</th><td>{{if .Config.HideDate}}yes{{else}}no{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .HasFrame}}
<script>
(function() {
  var img = document.getElementById("face");
  setInterval(function() {
    img.src = "/face.png?t=" + Date.now();
  }, 1000);
{{if .HasTap}}
  var form = document.getElementById("tap-form");
  form.addEventListener("submit", function(e) {
    e.preventDefault();
    fetch("/tap", { method: "POST" });
  });
{{end}}
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, hasFrame, hasTap bool) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		HasFrame bool
		HasTap   bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		HasFrame: hasFrame,
		HasTap:   hasTap,
	}
	return indexTmpl.Execute(w, data)
}
