// Package integration defines the domain model for storefront platform
// synchronization: the gateway port to the external platform, the external
// record shapes it returns, the staged copies persisted locally, and the
// cross-reference links that resolve platform ids to local entities.
//
// This package follows the Ports & Adapters pattern - the StorefrontGateway
// interface is defined here, and the concrete GraphQL client lives in the
// infrastructure layer.
package integration
