// Package services defines the shared error taxonomy used across the
// snapshot, solar, and timeline layers. Sentinel markers classify failures
// so callers can distinguish validation problems from pipeline failures
// without parsing messages.
package services
