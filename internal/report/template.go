package report

// htmlTemplate is the standalone HTML page for a run. Styles are inline so
// the file can be mailed or archived as is.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.5;
    max-width: 1200px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.15rem; margin: 24px 0 10px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 10px; margin-bottom: 16px; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.85rem; }
  th { background: var(--section-bg); text-align: left; padding: 6px 8px; font-weight: 600; white-space: nowrap; }
  td { padding: 6px 8px; border-bottom: 1px solid var(--border); white-space: nowrap; }
  td.bull { color: var(--green); font-weight: 600; }
  td.bear { color: var(--red); font-weight: 600; }
  td.warn { color: var(--orange); font-weight: 600; }
  td.err { color: var(--muted); font-style: italic; }
  td.missing { color: var(--muted); }

  .gauges { display: flex; gap: 16px; flex-wrap: wrap; }
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
  @media print {
    body { max-width: 100%; padding: 10px; }
    table { page-break-inside: avoid; }
  }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">{{.GeneratedAt}} · Portfolio: {{.Portfolio}}</p>
</div>

{{if .Gauges}}
<h2>Sentiment</h2>
<div class="gauges">{{range .Gauges}}{{.}}{{end}}</div>
{{end}}

{{if .ZChart}}
<div class="chart-container">{{.ZChart}}</div>
{{end}}

{{range .Sheets}}
<h2>{{.Name}}</h2>
<table>
  <thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
  {{range .Rows}}
  <tr>{{range .}}<td class="{{cellClass .}}">{{if .}}{{.}}{{else}}-{{end}}</td>{{end}}</tr>
  {{end}}
  </tbody>
</table>
{{end}}

<div class="footer">Generated by marketpulse. Indicators are descriptive, not advice.</div>
</body>
</html>
`
