package events

// Package events carries one-way notifications from the core services to the UI
// layer. Emitters are fire-and-forget: they never block the producer on a slow
// consumer and never report delivery.
