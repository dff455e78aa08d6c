// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the ports the service layer depends on. Hand-written lightweight doubles for
// the auth ports live in the auth subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	profiles := mocks.NewMockProfileStore(ctrl)
//	profiles.EXPECT().GetByID(gomock.Any(), "user-1").Return(profile, nil)
package mocks

// Generate mock for the ProfileStore interface from internal/ports.
// This creates MockProfileStore with methods: GetByID, Upsert.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_store_mock.go github.com/studyzone/studyzone-api/internal/ports ProfileStore
