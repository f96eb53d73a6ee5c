// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/storage_client.go -destination=storage_client_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/update_plan.go -destination=update_plan_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/locations.go -destination=locations_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/update_log.go -destination=update_log_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/archive.go -destination=archive_mock.go -package=mocks
