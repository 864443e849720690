// Package receipt contains the Receipt bounded context.
// This context is responsible for the typed representation of a sale
// notification pushed by the commerce platform and for the pure layout
// computation that turns one into a fixed-layout card presentation.
package receipt
