package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Entity}} – Filing Analysis</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1f3a5f 0%, #37393b 100%);
      color: #ffffff;
    }

    .entity {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .subtitle {
      font-size: 15px;
      opacity: 0.9;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }

    th {
      text-align: left;
      color: #6b7280;
      font-weight: 500;
      padding: 4px 8px 4px 0;
    }

    td {
      padding: 4px 8px 4px 0;
      border-top: 1px solid #f3f4f6;
    }

    .positive { color: #047857; }
    .negative { color: #b91c1c; }

    .predicate {
      display: inline-block;
      padding: 2px 6px;
      font-size: 11px;
      font-weight: 600;
      background: #e0f2fe;
      color: #0369a1;
      border-radius: 3px;
    }

    .notice {
      background: #f9fafb;
      border-left: 3px solid #1f3a5f;
      padding: 12px 16px;
      font-size: 13px;
      color: #374151;
      border-radius: 0 4px 4px 0;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="entity">{{.Entity}}</div>
      <div class="subtitle">Annual filings {{years .Years}}</div>
    </div>

    <div class="section">
      <div class="section-title">Sentiment by Year</div>
      <table>
        <tr><th>Year</th><th>Score</th></tr>
        {{range .Sentiment}}
        <tr>
          <td>{{.Year}}</td>
          <td class="{{if ge .Value 0.0}}positive{{else}}negative{{end}}">{{score .Value}}</td>
        </tr>
        {{end}}
      </table>
    </div>

    <div class="section">
      <div class="section-title">Keywords ({{.KeywordYear}})</div>
      {{if .TopKeywords}}
      <table>
        <tr><th>Keyword</th><th>Count</th><th>Relevance</th><th>Fog</th></tr>
        {{range .TopKeywords}}
        <tr>
          <td>{{.Text}}</td>
          <td>{{.Count}}</td>
          <td>{{fixed .Relevance}}</td>
          <td>{{fixed .Readability}}</td>
        </tr>
        {{end}}
      </table>
      {{else}}
      <div class="notice">No keywords.</div>
      {{end}}
    </div>

    <div class="section">
      <div class="section-title">Relations ({{.GraphYear}})</div>
      {{if .Graph}}
      <table>
        {{range .Graph.Edges}}
        <tr>
          <td>{{.Source}}</td>
          <td><span class="predicate">{{.Label}}</span></td>
          <td>{{.Target}}</td>
        </tr>
        {{end}}
      </table>
      {{else}}
      <div class="notice">{{if .GraphError}}{{.GraphError}}{{else}}No relations.{{end}}</div>
      {{end}}
    </div>

    {{if .Failures}}
    <div class="section">
      <div class="section-title">Failed Years</div>
      <ul>
        {{range .Failures}}
        <li>{{.Year}}: {{.Reason}}</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    <div class="footer">
      Run {{.RunID}} · Generated by <a href="https://github.com/shanehull/filinglens" target="_blank" rel="noopener">filinglens</a>
    </div>
  </div>
</body>
</html>`
