// Package constants provides shared constants used throughout hfrsync.
// Attempt ceilings and page sizes mirror what the registry and the HFR
// endpoints tolerate in production; change them through configuration
// rather than here when a deployment needs different limits.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the timeout for upstream feed and registry write requests
	DefaultHTTPTimeout = 30 * time.Second

	// RegistryListTimeout is the read timeout for registry listing pages, which can be slow on large trees
	RegistryListTimeout = 600 * time.Second

	// RetryBackoff is the base backoff duration between retry attempts
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration between retry attempts
	MaxRetryBackoff = 30 * time.Second
)

// Attempt ceilings
const (
	// FacilityFeedAttempts is the per-page attempt ceiling for the facility registry feed
	FacilityFeedAttempts = 200

	// HierarchyFeedAttempts is the per-page attempt ceiling for the admin hierarchy feed
	HierarchyFeedAttempts = 3

	// RegistryListAttempts is the per-page attempt ceiling when listing registry locations
	RegistryListAttempts = 30

	// RegistryWriteAttempts is the attempt ceiling for create, rename and reparent writes
	RegistryWriteAttempts = 10

	// RegistryAttributeAttempts is the attempt ceiling for attribute reads and writes
	RegistryAttributeAttempts = 3
)

// Registry constants
const (
	// RegistryPageSize is the number of locations requested per listing page
	RegistryPageSize = 100

	// LocationResourcePath is the REST path of the location resource
	LocationResourcePath = "ws/rest/v1/location"

	// CreatedDescription is the description attached to every location this tool creates
	CreatedDescription = "Created via integration"
)

// Default values
const (
	// DefaultCountryCode is used for the country level when the hierarchy feed carries no code
	DefaultCountryCode = "TZ"

	// DefaultStartPage is the first upstream feed page
	DefaultStartPage = 1

	// NameSeparator joins the parts of composite location names
	NameSeparator = " - "
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
