// Package server bridges browser pages to usekit hooks.
//
// Each WebSocket connection gets a Session with its own host.Env: a loop,
// a window driven by the page's focus, visibility, resize and pointer
// events, and a document whose style variable writes are pushed back to
// the page. Storage is shared by all sessions. The application component
// runs on the session loop:
//
//	srv := server.New(server.Config{
//	    Addr: ":7400",
//	    Component: func(sess *server.Session) {
//	        focused := use.UseWindowFocus()
//	        reactive.Watch(focused.Get, func(v, _ bool) {
//	            sess.Push(server.Message{Type: "focus", Data: v})
//	        })
//	    },
//	})
//	srv.Run(ctx)
//
// # Wire format
//
// Messages are JSON text frames. From the page:
//
//	{"type":"hello","focused":true,"visibility":"visible","width":1280,"height":800}
//	{"type":"focus"} {"type":"blur"}
//	{"type":"visibility","visibility":"hidden"}
//	{"type":"resize","width":1024,"height":768}
//	{"type":"pointer","kind":"mousemove","pageX":240,"pageY":10}
//	{"type":"action","name":"refresh"}
//
// To the page:
//
//	{"type":"welcome","session":"<uuid>"}
//	{"type":"styleVar","name":"--sidebar-width","value":"240px"}
//	{"type":"error","code":"U020","message":"..."}
//
// plus whatever the component pushes.
package server
