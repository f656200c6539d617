// Package wshub fans real-time notifications out to websocket clients.
//
// The Hub keeps three indices over live connections: by channel name, by
// user id and by role. Publish targets the deduplicated union of the
// three, so a connection matching on both its user and a subscribed
// channel still receives exactly one frame. Disconnect removes the
// connection from every index; no index ever retains a dangling id.
//
// Liveness is ping based: Run marks every connection not-alive on each
// tick (30s by default) and pings it; a heartbeat frame or websocket pong
// marks it alive again, and a connection still not-alive at the next tick
// is reaped. A failed write to a socket disconnects that socket, never the
// publish.
//
// Handler serves the JSON frame protocol over a gorilla/websocket
// upgrade. The hub itself only sees the Conn interface, so fan-out logic
// is testable without sockets.
//
//	hub := wshub.NewHub()
//	go hub.Run(ctx)
//	mux.Handle("/ws", wshub.Handler(hub))
//
//	hub.Publish(wshub.Notification{
//		Channel: "loans",
//		Event:   "loan.approved",
//		Payload: map[string]any{"loanId": "loan-42"},
//	})
package wshub
