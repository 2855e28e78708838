// Package handler implements HTTP request handlers for the storeplan API.
//
// LayoutHandler serves entities, graphic elements, the framed view and
// YAML/JSON/PNG import and export. Register adds its routes to a ServeMux.
//
// Errors are returned as JSON {error, details}. Service errors containing
// "not found" map to 404.
//
// Middleware provides request logging, panic recovery and CORS.
package handler
