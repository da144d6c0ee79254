// Package assetd tracks IT hardware assets and the network resources they
// consume.
//
// # Overview
//
// assetd keeps an inventory of workstations, laptops and servers together
// with their software licenses and BitLocker recovery keys, and follows
// each asset through its lifecycle (Active, In Repair, Replaced, Retired).
// A hardware swap is a single replacement operation: the old asset is
// retired and a successor is created under a new asset code, inheriting the
// selected identity fields and licenses.
//
// Alongside the inventory it manages the network side:
//   - an IP address pool whose assignment state is derived from assignments
//   - VLANs the pool addresses belong to
//   - racks, switches and switch ports, including cable labelling
//
// # Architecture
//
//	┌─────────────────┐     ┌─────────────────┐
//	│  REST API       │     │  CLI import     │
//	│  (Echo)         │     │  (cobra)        │
//	└────────┬────────┘     └────────┬────────┘
//	         │                       │
//	┌────────▼───────────────────────▼────────┐
//	│ inventory · network · importer          │
//	└────────────────────┬────────────────────┘
//	                     │
//	┌────────────────────▼────────────────────┐
//	│ storage (gorm: SQLite or PostgreSQL)    │
//	└─────────────────────────────────────────┘
//
// # Usage
//
// Start the API server:
//
//	assetd server --config configs/config.yaml
//
// Import an inventory export and a recovery key:
//
//	assetd import assets inventory.xlsx
//	assetd import bitlocker --asset 42 C_recovery.txt
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (ASSETD_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  port: 8080
//	database:
//	  driver: postgres
//	  dsn: "host=localhost user=assetd dbname=assetd sslmode=disable"
//	security:
//	  auth_enabled: true
//	  jwt_secret: change-me
//
// # API Endpoints
//
// Assets:
//   - GET    /api/v1/assets                        - List (search, filter=incomplete, page, limit)
//   - POST   /api/v1/assets                        - Create with licenses and recovery keys
//   - GET    /api/v1/assets/:id                    - Get with children
//   - PUT    /api/v1/assets/:id                    - Update, replacing children
//   - DELETE /api/v1/assets/:id                    - Delete
//   - POST   /api/v1/assets/upload                 - CSV/XLSX bulk import
//   - POST   /api/v1/assets/:id/upload-bitlocker   - Store a recovery key
//   - POST   /api/v1/assets/:id/replace            - Replace hardware
//
// Network:
//   - /api/v1/ip-pools, /api/v1/ip-pools/:id/assignment
//   - GET /api/v1/ips?vlan_id=                     - Unassigned addresses of a VLAN
//   - /api/v1/vlans, /api/v1/racks, /api/v1/switches, /api/v1/ports
//   - GET /api/v1/racks/:id/next-lan-id           - Suggested next cable number
//
// Operations:
//   - GET /health
//   - GET /metrics
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o assetd ./cmd/assetd
package assetd
