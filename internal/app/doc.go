// Package app composes the salon services into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── account/        # Customer accounts
//	│   ├── cart/           # Cart entries, groups, checkout selection
//	│   ├── design/         # Nail designs and their services
//	│   ├── booking/        # Stores, artists, appointments
//	│   └── feedback/       # Post-appointment ratings
//	├── services/           # Business logic per domain
//	├── storage/            # Store interfaces and implementations
//	│   ├── interfaces.go   # AccountStore, CartStore, BookingStore, ...
//	│   ├── memory/         # In-memory implementation for tests and dev
//	│   ├── postgres/       # PostgreSQL implementation for production
//	│   └── redis/          # Redis-backed cart store
//	├── httpapi/            # HTTP handlers, auth wrapping, audit trail
//	├── system/             # Lifecycle manager for background services
//	└── metrics/            # Prometheus collectors
//
// The app package owns composition only: it defaults nil stores to the
// in-memory implementation, constructs the services, attaches the cart's
// booking and duration-estimation hooks, and registers background services
// such as the appointment reminder with the lifecycle manager. Business
// rules live in internal/app/services; request handling in
// internal/app/httpapi.
package app
