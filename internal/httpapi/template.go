package httpapi

import "html/template"

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 52rem; padding: 0 1rem; background: #14151a; color: #e8e8e8; }
  h1 { font-size: 1.4rem; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
  th, td { text-align: left; padding: .45rem .7rem; border-bottom: 1px solid #2c2e36; }
  th { color: #9aa0ab; font-weight: 600; }
  td.version { font-variant-numeric: tabular-nums; }
  .muted { color: #9aa0ab; }
  .lastcheck { color: #9aa0ab; font-size: .9rem; }
  pre { background: #0d0e11; border: 1px solid #2c2e36; border-radius: 6px; padding: .8rem; overflow-x: auto; font-size: .8rem; line-height: 1.5; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .LastCheck}}<p class="lastcheck">Last check: {{.LastCheck.Label}} at {{.LastCheck.Timestamp}} ({{.LastCheck.Elapsed}})</p>{{end}}
<table>
  <tr><th>Application</th><th>Version</th><th>Date</th><th>Age</th></tr>
{{range .Apps}}  <tr>
    <td>{{.Label}}</td>
    <td class="version">{{if .Version}}{{.Version}}{{else}}<span class="muted">unknown</span>{{end}}</td>
    <td>{{.Date}}</td>
    <td>{{.Elapsed}}</td>
  </tr>
{{end}}</table>
{{if .Log}}<h2>Recent checks</h2>
<pre>{{.Log}}</pre>
<p class="muted">last {{.LogLines}} lines of {{.LogPath}}</p>
{{end}}</body>
</html>
`
