package api

import (
	"net/http"
)

const observerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Trolley Engine - Observer</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #14141f;
            color: #ddd;
            height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #1d1d30;
            padding: 12px 20px;
            border-bottom: 1px solid #3a3a5c;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; color: #e8c170; }
        main { flex: 1; display: flex; overflow: hidden; }
        section { padding: 16px; overflow-y: auto; }
        #state { width: 40%; border-right: 1px solid #3a3a5c; }
        #log { flex: 1; }
        .row { margin-bottom: 8px; }
        .label { color: #888; margin-right: 8px; }
        .value { color: #e8c170; }
        .lever-left  { color: #7fc97f; }
        .lever-right { color: #d95f5f; }
        #countdown.danger { color: #d95f5f; font-weight: bold; }
        .buttons { margin-top: 16px; }
        button {
            font-family: monospace;
            background: #2a2a44;
            color: #ddd;
            border: 1px solid #3a3a5c;
            padding: 6px 14px;
            margin-right: 6px;
            margin-bottom: 6px;
            cursor: pointer;
        }
        button:hover { background: #3a3a5c; }
        .event { padding: 2px 0; border-bottom: 1px solid #1d1d30; font-size: 12px; }
        .event .ts { color: #555; margin-right: 6px; }
        .event .name { color: #7fa9d9; margin-right: 6px; }
        .event.warn .name { color: #e8c170; }
        .event.error .name { color: #d95f5f; }
    </style>
</head>
<body>
<header>
    <h1>TROLLEY ENGINE</h1>
    <span id="conn">connecting&hellip;</span>
</header>
<main>
    <section id="state">
        <div class="row"><span class="label">scene</span><span class="value" id="scene">-</span></div>
        <div class="row"><span class="label">phase</span><span class="value" id="phase">-</span></div>
        <div class="row"><span class="label">stage</span><span class="value" id="stage">-</span></div>
        <div class="row"><span class="label">lever</span><span class="value" id="lever">-</span></div>
        <div class="row"><span class="label">countdown</span><span class="value" id="countdown">-</span></div>
        <div class="row"><span class="label">dilation</span><span class="value" id="dilation">-</span></div>
        <div class="row"><span class="label">stages played</span><span class="value" id="played">-</span></div>
        <div class="buttons">
            <button onclick="op('start')">Start</button>
            <button onclick="op('next')">Next</button>
            <button onclick="pull('left')">Pull Left</button>
            <button onclick="pull('right')">Pull Right</button>
            <button onclick="op('skip')">Skip</button>
            <button onclick="op('replay')">Replay</button>
        </div>
    </section>
    <section id="log"></section>
</main>
<script>
function op(name) { fetch('/operator/' + name, {method: 'POST'}); }
function pull(side) {
    fetch('/operator/pull', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({side: side})
    });
}

function addEvent(e) {
    const log = document.getElementById('log');
    const div = document.createElement('div');
    div.className = 'event ' + (e.level || '');
    const ts = (e.ts || '').slice(11, 19);
    div.innerHTML = '<span class="ts">' + ts + '</span>' +
        '<span class="name">' + e.event + '</span>' +
        (e.fields ? JSON.stringify(e.fields) : '');
    log.prepend(div);
    while (log.childNodes.length > 300) log.removeChild(log.lastChild);
}

async function refreshState() {
    try {
        const s = await (await fetch('/state')).json();
        document.getElementById('scene').textContent = s.scene;
        document.getElementById('phase').textContent = s.dilemma ? s.dilemma.phase : s.kind;
        document.getElementById('stage').textContent = s.dilemma
            ? (s.dilemma.stage + 1) + ' / ' + s.dilemma.stage_count : '-';
        const lever = document.getElementById('lever');
        lever.textContent = s.dilemma ? s.dilemma.lever : '-';
        lever.className = 'value lever-' + (s.dilemma ? s.dilemma.lever : '');
        const cd = document.getElementById('countdown');
        cd.textContent = s.dilemma ? s.dilemma.countdown_remaining.toFixed(1) + ' s' : '-';
        cd.className = s.dilemma && s.dilemma.countdown_danger ? 'value danger' : 'value';
        document.getElementById('dilation').textContent = s.dilation.toFixed(2);
        document.getElementById('played').textContent = s.stages_played;
    } catch (err) { /* engine restarting */ }
}

function connect() {
    const ws = new WebSocket('ws://' + location.host + '/ws/events');
    ws.onopen = () => { document.getElementById('conn').textContent = 'live'; };
    ws.onmessage = (msg) => addEvent(JSON.parse(msg.data));
    ws.onclose = () => {
        document.getElementById('conn').textContent = 'reconnecting…';
        setTimeout(connect, 2000);
    };
}

connect();
refreshState();
setInterval(refreshState, 250);
</script>
</body>
</html>`

// uiHandler serves the single-page observer UI.
func (s *Server) uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(observerUIHTML))
}
