package server

// defaultPage forwards window events to the session and applies pushed
// style variables to the root element. Elements with a data-action
// attribute send an action message when clicked; other pushed messages
// are rendered into #state.
const defaultPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>usekit</title>
<style>
:root { --sidebar-width: 240px; }
body { margin: 0; font-family: system-ui, sans-serif; display: flex; height: 100vh; }
#sidebar { width: var(--sidebar-width); background: #f4f4f5; position: relative; overflow: auto; }
#bar { position: absolute; top: 0; right: 0; width: 5px; height: 100%; cursor: ew-resize; background: #d4d4d8; }
#main { flex: 1; padding: 1rem; overflow: auto; }
pre { background: #18181b; color: #e4e4e7; padding: 1rem; border-radius: 4px; }
</style>
</head>
<body>
<aside id="sidebar"><div id="bar"></div></aside>
<main id="main">
<button data-action="refresh">Refresh</button>
<pre id="state">connecting...</pre>
</main>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  var state = {};

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }
  function render() {
    document.getElementById("state").textContent = JSON.stringify(state, null, 2);
  }
  function pointer(kind, e) {
    var msg = { type: "pointer", kind: kind, pageX: e.pageX || 0, pageY: e.pageY || 0 };
    if (e.touches) {
      msg.touches = Array.prototype.map.call(e.touches, function (t) {
        return { pageX: t.pageX, pageY: t.pageY };
      });
    }
    send(msg);
  }

  ws.onopen = function () {
    send({
      type: "hello",
      focused: document.hasFocus(),
      visibility: document.visibilityState,
      width: window.innerWidth,
      height: window.innerHeight
    });
  };
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    switch (msg.type) {
    case "styleVar":
      document.documentElement.style.setProperty(msg.name, msg.value);
      break;
    case "welcome":
      state.session = msg.session;
      render();
      break;
    case "error":
      console.warn(msg.code, msg.message);
      break;
    default:
      state[msg.type] = msg.data;
      render();
    }
  };
  ws.onclose = function () {
    document.getElementById("state").textContent = "disconnected";
  };

  window.addEventListener("focus", function () { send({ type: "focus" }); });
  window.addEventListener("blur", function () { send({ type: "blur" }); });
  document.addEventListener("visibilitychange", function () {
    send({ type: "visibility", visibility: document.visibilityState });
  });
  window.addEventListener("resize", function () {
    send({ type: "resize", width: window.innerWidth, height: window.innerHeight });
  });
  ["mousedown", "mousemove", "mouseup", "touchstart", "touchmove", "touchend"].forEach(function (kind) {
    window.addEventListener(kind, function (e) { pointer(kind, e); }, { passive: true });
  });
  document.addEventListener("click", function (e) {
    var name = e.target.getAttribute && e.target.getAttribute("data-action");
    if (name) send({ type: "action", name: name });
  });
})();
</script>
</body>
</html>
`
