package ui

import (
	"html/template"
	"time"

	"voxassist/internal/reminder"
)

type pageData struct {
	SearchFlashes   []Flash
	SearchClips     []string
	ReminderFlashes []Flash
	Form            Form
	Entries         []Entry
	Pending         []reminder.Reminder
}

var pageFuncs = template.FuncMap{
	"when": func(t time.Time) string { return reminder.FormatWhen(t) },
}

var page = template.Must(template.New("page").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Voice Assistant with Web Search &amp; Reminders</title>
	<style>
		body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
		section { margin-bottom: 2.5rem; }
		label { display: block; margin-top: .6rem; }
		input[type=text], input[type=email], input[type=date], input[type=time] { width: 100%; padding: .4rem; }
		button { margin-top: .8rem; padding: .5rem 1rem; }
		.flash { padding: .5rem .8rem; margin: .4rem 0; border-radius: 4px; }
		.info { background: #eef3fb; }
		.success { background: #e6f6ea; }
		.error { background: #fbeaea; }
		table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
		th, td { border: 1px solid #ccc; padding: .4rem; text-align: left; }
		#status { color: #555; font-size: .9rem; }
	</style>
</head>
<body>
	<h1>Voice Assistant with Web Search &amp; Reminders</h1>
	<div id="status"></div>
	<div id="clips"></div>

	<section>
		<h2>Web Search with Voice Command</h2>
		<form method="post" action="/search">
			<button type="submit">Start Voice Search</button>
		</form>
		<form method="post" action="/search/upload" enctype="multipart/form-data">
			<label>Or upload a recording (wav, mp3, ogg)
				<input type="file" name="audio" accept="audio/*">
			</label>
			<button type="submit">Search from Recording</button>
		</form>
		{{range .SearchFlashes}}<div class="flash {{.Kind}}">{{.Text}}</div>{{end}}
		{{range .SearchClips}}<audio src="{{.}}" controls autoplay></audio>{{end}}
	</section>

	<section>
		<h2>Schedule a Meeting / Reminder</h2>
		<form method="post" action="/reminders">
			<label>Event Name <input type="text" name="event" value="{{.Form.Event}}"></label>
			<label>Event Date <input type="date" name="date" value="{{.Form.Date}}"></label>
			<label>Event Time (e.g., 09:00 AM or 03:45 PM) <input type="time" name="time" value="{{.Form.Time}}"></label>
			<label>Recipient Email <input type="email" name="email" value="{{.Form.Recipient}}"></label>
			<label>Meeting Link or Place (e.g., Zoom/Meet URL or Office Room)
				<input type="text" name="location" value="{{.Form.Location}}">
			</label>
			<button type="submit">Set Reminder</button>
		</form>
		{{range .ReminderFlashes}}<div class="flash {{.Kind}}">{{.Text}}</div>{{end}}

		{{if .Entries}}
		<table>
			<tr><th>Event</th><th>When</th><th>Recipient</th></tr>
			{{range .Entries}}<tr><td>{{.Event}}</td><td>{{when .EventAt}}</td><td>{{.Recipient}}</td></tr>{{end}}
		</table>
		{{end}}

		{{if .Pending}}
		<h3>Pending notifications</h3>
		<table>
			<tr><th>Event</th><th>Notify at</th><th>Location</th></tr>
			{{range .Pending}}<tr><td>{{.Event}}</td><td>{{when .FireAt}}</td><td>{{.Location}}</td></tr>{{end}}
		</table>
		{{end}}
	</section>

	<script>
		(function () {
			var status = document.getElementById("status");
			var clips = document.getElementById("clips");
			var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
			ws.onmessage = function (ev) {
				var st = JSON.parse(ev.data);
				if (st.kind === "clip") {
					if (st.replay) { return; }
					var a = document.createElement("audio");
					a.src = st.text; a.controls = true; a.autoplay = true;
					clips.replaceChildren(a);
					return;
				}
				status.textContent = st.text;
			};
		})();
	</script>
</body>
</html>
`))
