// Package service implements the layout business logic for storeplan.
//
// # Services
//
// LayoutService validates and persists entities, graphic elements and the framed
// view, and handles YAML/JSON import and export via the codec package.
//
// Writer is the fire-and-forget persistence path used by interactive engines.
// Updates are coalesced per id so a drag that emits many intermediate entities
// ends in a single write of the last one.
//
// # Event System
//
// Every change is published on the EventBus for SSE clients and live sessions.
// Persistence failures from the Writer are published as persist_failed events;
// nothing is rolled back.
package service
