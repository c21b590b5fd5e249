package main

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>SyncRoom</title>
<meta name="description" content="Room coordinator for synchronized group playback">
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{
--bg:#14151a;
--card:#1e2027;
--border:#2c2f38;
--fg:#e6e6e6;
--muted:#7a7f8c;
--accent:#8bd5a0;
--radius:6px;
}
body{
font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;
background:var(--bg);
color:var(--fg);
min-height:100vh;
display:flex;
align-items:center;
justify-content:center;
padding:24px;
}
.card{
background:var(--card);
border:1px solid var(--border);
border-radius:var(--radius);
padding:32px;
max-width:420px;
width:100%;
text-align:center;
}
h1{font-size:22px;margin-bottom:8px}
h1 span{color:var(--accent)}
p{color:var(--muted);font-size:14px;line-height:1.6}
code{
display:inline-block;
margin-top:16px;
padding:6px 10px;
background:var(--bg);
border:1px solid var(--border);
border-radius:var(--radius);
font-size:13px;
color:var(--accent);
}
</style>
</head>
<body>
<div class="card">
<h1>Sync<span>Room</span></h1>
<p>WebSocket coordinator for synchronized group playback.
Create a room, share its 8-digit code, and play in time together.</p>
<code>wss://&lt;host&gt;/ws</code>
</div>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
