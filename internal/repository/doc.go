// Package repository defines the data access interface for store layouts.
//
// The implementation lives in the sqlite subpackage. It stores entities,
// graphic elements and the framed view, and replaces a whole layout in one
// transaction on import.
//
// Getters for single rows return nil, nil when the row is missing so the service
// layer decides whether that is an error.
package repository
