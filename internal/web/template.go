package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/status"
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
	"cm": func(v float64) string {
		return fmt.Sprintf("%.2f cm", v)
	},
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Range Node</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.warn { color: orange; }
.err { color: red; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>Range Node</h1>

<table>
<tr><th>Distance</th><td>{{if .HasSample}}<span class="ok">{{cm .LastDistanceCm}}</span>{{else}}<span class="warn">NO SAMPLE YET</span>{{end}}</td></tr>
{{if .HasSample}}<tr><th>Sampled at</th><td>{{rfc3339 .LastSampleAt}} (tick {{.LastTick}})</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<h2>Publishing</h2>
<table>
<tr><th>Heartbeats</th><td>{{.Publish.Heartbeats}}</td></tr>
<tr><th>Distance transfers</th><td>{{.Publish.Distances}}</td></tr>
<tr><th>Queue depth</th><td>{{.QueueDepth}}</td></tr>
<tr><th>Enqueue drops</th><td>{{if .Publish.EnqueueDrops}}<span class="err">{{.Publish.EnqueueDrops}}</span>{{else}}<span class="muted">0</span>{{end}}</td></tr>
<tr><th>Send drops</th><td>{{if .SendDrops}}<span class="err">{{.SendDrops}}</span>{{else}}<span class="muted">0</span>{{end}}</td></tr>
<tr><th>Suppressed samples</th><td>{{if .Publish.Suppressed}}<span class="warn">{{.Publish.Suppressed}}</span>{{else}}<span class="muted">0</span>{{end}}</td></tr>
<tr><th>Edge drops</th><td>{{if .EdgeDrops}}<span class="warn">{{.EdgeDrops}}</span>{{else}}<span class="muted">0</span>{{end}}</td></tr>
<tr><th>Discarded edges</th><td>{{if .DiscardedEdges}}<span class="warn">{{.DiscardedEdges}}</span>{{else}}<span class="muted">0</span>{{end}}</td></tr>
</table>

<h2>Configuration</h2>
<table>
<tr><th>CAN interface</th><td>{{.Config.Iface}}</td></tr>
<tr><th>Node ID</th><td>{{.Config.NodeID}}</td></tr>
<tr><th>Trigger / echo pin</th><td>{{.Config.TriggerPin}} / {{.Config.EchoPin}}</td></tr>
<tr><th>Trigger period</th><td>{{.Config.TriggerPeriodMs}} ms</td></tr>
{{if .Config.Broker}}<tr><th>MQTT mirror</th><td>{{.Config.Broker}} {{if .MQTTConnected}}<span class="ok">connected</span>{{else}}<span class="err">disconnected</span>{{end}}</td></tr>{{end}}
</table>

<p class="muted"><a href="/index.json">index.json</a></p>
</body>
</html>
`

// renderHTML writes the status page. Template errors are logged, not fatal.
func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}
