package dashboard

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: sans-serif; margin: 0 2em; }
h1 { text-align: center; }
.controls { padding: 20px; background-color: #f0f0f0; margin-bottom: 20px; }
.controls label.heading { font-weight: bold; display: block; margin-bottom: 10px; }
.buttons { margin-bottom: 15px; }
.buttons button { margin-right: 10px; }
.checklist { column-count: 4; }
iframe { width: 100%; border: none; }
.info { padding: 15px; background-color: #e8f4f8; margin-top: 20px; border-radius: 5px; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
<form class="controls" method="get" action="/">
	<label class="heading">Select the cycles to display:</label>
	<input type="hidden" name="submitted" value="1">
	<div class="buttons">
		<button type="submit" name="action" value="all">Select all</button>
		<button type="submit" name="action" value="none">Deselect all</button>
	</div>
	<div class="checklist">
	{{ range .Cycles }}
		<label><input type="checkbox" name="cycle" value="{{ .ID }}" onchange="this.form.submit()"{{ if .Checked }} checked{{ end }}> Cycle {{ .ID }}</label><br>
	{{ end }}
	</div>
</form>
<iframe src="{{ .ChartURL }}" style="height: {{ .ChartHeight }}"></iframe>
<div class="info">
{{ if .Summary.Cycles }}
	<strong>Selected cycles: </strong><span>{{ range $i, $c := .Summary.Cycles }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}</span><br>
	<strong>Total points: </strong><span>{{ .Summary.TotalPoints }}</span><br>
	<strong>E range: </strong><span>{{ printf "%.2f" .Summary.RangeE }} cm</span>
	<span> | </span>
	<strong>N range: </strong><span>{{ printf "%.2f" .Summary.RangeN }} cm</span>
{{ else }}
	{{ .Text }}
{{ end }}
</div>
</body>
</html>
`
