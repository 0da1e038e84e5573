// Package mocks provides mock implementations for testing the two-factor services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockClient := mocks.NewMockProviderClient(ctrl)
//	mockClient.EXPECT().HealthCheck(gomock.Any()).Return(true, nil)
package mocks

// Generate mocks for the lookups consumed by the entitlement gate:
// UserRepository, OrganizationRepository, PremiumChecker
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=lookup_mock.go github.com/target/duogate/internal/ports UserRepository,OrganizationRepository,PremiumChecker

// Generate mocks for the provider protocol client and its factory:
// ProviderClientFactory (Build), ProviderClient (HealthCheck, AuthorizationURL, ExchangeCode)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=provider_mock.go github.com/target/duogate/internal/ports ProviderClientFactory,ProviderClient

// Generate mocks for state protection and code replay tracking:
// StateProtector (Protect, TryUnprotect), ReplayGuard (Claim)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=state_mock.go github.com/target/duogate/internal/ports StateProtector,ReplayGuard
