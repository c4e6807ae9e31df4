package templates

// FleetReportHTML renders a printable fleet snapshot. The data is a
// handlers.reportView.
const FleetReportHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>FleetPulse Fleet Report</title>
    <style>
        :root {
            --text-primary: #111827;
            --text-secondary: #6b7280;
            --accent: #2563eb;
            --danger: #ef4444;
            --danger-bg: #fef2f2;
            --warning: #f59e0b;
            --warning-bg: #fffbeb;
            --success: #10b981;
            --success-bg: #ecfdf5;
            --border: #e5e7eb;
            --radius: 8px;
        }

        body {
            font-family: 'Inter', -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #f3f4f6;
            color: var(--text-primary);
            margin: 0;
            padding: 40px;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
            background: #fff;
            border-radius: 12px;
            overflow: hidden;
        }

        header {
            background: #1e293b;
            color: #fff;
            padding: 32px 40px;
            display: flex;
            justify-content: space-between;
            align-items: center;
            border-bottom: 4px solid var(--accent);
        }

        header h1 { margin: 0; font-size: 26px; }
        header .meta { text-align: right; font-size: 13px; color: #cbd5e1; }

        section { padding: 28px 40px; border-bottom: 1px solid var(--border); }
        h2 { margin: 0 0 16px; font-size: 18px; }

        .banner { padding: 14px 40px; font-weight: 600; }
        .banner.healthy { background: var(--success-bg); color: var(--success); }
        .banner.warning { background: var(--warning-bg); color: var(--warning); }
        .banner.critical { background: var(--danger-bg); color: var(--danger); }
        .banner.degraded { background: var(--warning-bg); color: var(--text-primary); }

        .cards { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
        .card { border: 1px solid var(--border); border-radius: var(--radius); padding: 16px; }
        .card .title { color: var(--text-secondary); font-size: 12px; text-transform: uppercase; }
        .card .value { font-size: 28px; font-weight: 700; margin: 6px 0; }
        .card .trend { font-size: 12px; color: var(--text-secondary); }

        table { width: 100%; border-collapse: collapse; font-size: 14px; }
        th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid var(--border); }
        th { color: var(--text-secondary); font-weight: 600; }
        .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 2px; margin-right: 6px; }

        .sev { padding: 2px 8px; border-radius: 10px; font-size: 12px; font-weight: 600; }
        .sev.critical, .sev.high { background: var(--danger-bg); color: var(--danger); }
        .sev.medium { background: var(--warning-bg); color: var(--warning); }
        .sev.low { background: var(--success-bg); color: var(--success); }

        footer { padding: 20px 40px; font-size: 12px; color: var(--text-secondary); }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>FleetPulse Fleet Report</h1>
        <div class="meta">
            <div>Snapshot #{{.Snapshot.Sequence}}</div>
            <div>Computed {{.Snapshot.ComputedAt.UTC.Format "2006-01-02 15:04:05 MST"}}</div>
        </div>
    </header>

    <div class="banner {{.StatusClass}}">
        System status: {{.Snapshot.Stats.SystemStatus}}
        {{if .Snapshot.Degraded}}&middot; degraded output ({{range $i, $s := .Snapshot.FailedStages}}{{if $i}}, {{end}}{{$s}}{{end}}){{end}}
    </div>

    <section>
        <h2>Overview</h2>
        <div class="cards">
            {{range .Snapshot.Cards}}
            <div class="card">
                <div class="title">{{.Title}}</div>
                <div class="value">{{.Value}}</div>
                <div class="trend">{{.Trend.Description}}{{if .Subtitle}} &middot; {{.Subtitle}}{{end}}</div>
            </div>
            {{end}}
        </div>
    </section>

    <section>
        <h2>Status distribution</h2>
        {{template "distribution" .StatusRows}}
    </section>

    <section>
        <h2>Type distribution</h2>
        {{template "distribution" .TypeRows}}
    </section>

    <section>
        <h2>Recent alerts</h2>
        {{if .Snapshot.Alerts}}
        <table>
            <tr><th>Severity</th><th>Device</th><th>Message</th><th>Raised</th></tr>
            {{range .Snapshot.Alerts}}
            <tr>
                <td><span class="sev {{lower .Severity}}">{{.Severity}}</span></td>
                <td>{{.DeviceName}}</td>
                <td>{{.Message}}</td>
                <td>{{.Timestamp.UTC.Format "2006-01-02 15:04"}}</td>
            </tr>
            {{end}}
        </table>
        {{else}}
        <p>No unacknowledged alerts.</p>
        {{end}}
    </section>

    <footer>Generated {{.GeneratedAt.UTC.Format "2006-01-02 15:04:05 MST"}} &middot; snapshot {{.Snapshot.ID}}</footer>
</div>
</body>
</html>

{{define "distribution"}}
{{if .}}
<table>
    <tr><th>Category</th><th>Devices</th><th>Share</th></tr>
    {{range .}}
    <tr>
        <td><span class="swatch" style="background: {{.Color}}"></span>{{.Label}}</td>
        <td>{{.Count}}</td>
        <td>{{.Percentage}}%</td>
    </tr>
    {{end}}
</table>
{{else}}
<p>No devices.</p>
{{end}}
{{end}}
`
