package api

// indexPage is the device's built-in status page. It polls the JSON API so
// the page itself can stay static.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gas Detector</title>
<style>
  body { font-family: sans-serif; max-width: 640px; margin: 2em auto; padding: 0 1em; }
  h1 { font-size: 1.4em; }
  .card { border: 1px solid #ccc; border-radius: 6px; padding: 1em; margin-bottom: 1em; }
  .alert { color: #b00020; font-weight: bold; }
  .ok { color: #2e7d32; }
  table { border-collapse: collapse; width: 100%; }
  td, th { text-align: left; padding: 0.25em 0.5em; border-bottom: 1px solid #eee; }
  button { padding: 0.5em 1em; }
</style>
</head>
<body>
<h1>Gas Detector</h1>
<div class="card">
  <div>Reading: <span id="reading">-</span> ppm (median <span id="median">-</span>)</div>
  <div>Baseline: <span id="baseline">-</span></div>
  <div>State: <span id="state">-</span></div>
  <button onclick="calibrate()">Recalibrate</button>
</div>
<div class="card">
  <h2>Recent events</h2>
  <table><thead><tr><th>Time</th><th>Kind</th><th>Value</th></tr></thead>
  <tbody id="events"></tbody></table>
</div>
<script>
async function refresh() {
  const st = await (await fetch('/api/status')).json();
  document.getElementById('reading').textContent = st.reading.toFixed(0);
  document.getElementById('median').textContent = st.median.toFixed(0);
  document.getElementById('baseline').textContent = st.baseline;
  const state = document.getElementById('state');
  if (st.calibrating) {
    state.textContent = 'calibrating (' + st.calibration_readings + ' readings)';
    state.className = '';
  } else if (st.alerting) {
    state.textContent = 'ALERT';
    state.className = 'alert';
  } else {
    state.textContent = 'normal';
    state.className = 'ok';
  }
  const rows = await (await fetch('/api/events?limit=20')).json();
  document.getElementById('events').innerHTML = rows.map(e =>
    '<tr><td>' + new Date(e.created_at).toLocaleString() + '</td><td>' +
    e.kind + '</td><td>' + e.value.toFixed(0) + '</td></tr>').join('');
}
async function calibrate() {
  await fetch('/api/calibrate', {method: 'POST'});
  refresh();
}
refresh();
setInterval(refresh, 2000);
</script>
</body>
</html>
`
