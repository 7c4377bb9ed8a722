package config

import "time"

var (
	bindVar = RegisterStringVar("MNEMOSYNE_BIND", "0.0.0.0", "HTTP bind address for the JSON-RPC server")
	portVar = RegisterIntVar("MNEMOSYNE_PORT", 8010, "HTTP port for the JSON-RPC server")

	neo4jURIVar      = RegisterStringVar("NEO4J_URI", "bolt://localhost:7687", "Bolt URI of the backing graph store")
	neo4jUserVar     = RegisterStringVar("NEO4J_USER", "neo4j", "Graph store username")
	neo4jPasswordVar = RegisterStringVar("NEO4J_PASSWORD", "mnemosyne", "Graph store password")
	neo4jDatabaseVar = RegisterStringVar("NEO4J_DATABASE", "neo4j", "Graph store database name")

	multiTenantVar = RegisterBoolVar("MNEMOSYNE_MULTI_TENANT", false, "Enable per-space tenant isolation")

	requestTimeoutVar = RegisterDurationVar("MNEMOSYNE_REQUEST_TIMEOUT", 30*time.Second, "Deadline applied to every HTTP request, tools/call included")
)

// Config is the fully-resolved, immutable process configuration. It is
// read once at startup (§5, "Shared resources") and never re-read per
// request.
type Config struct {
	Bind string
	Port int

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	MultiTenant bool

	RequestTimeout time.Duration
}

// Load resolves Config from the environment, applying the defaults named
// in §6.3.
func Load() Config {
	return Config{
		Bind: bindVar.Get(),
		Port: portVar.Get(),

		Neo4jURI:      neo4jURIVar.Get(),
		Neo4jUser:     neo4jUserVar.Get(),
		Neo4jPassword: neo4jPasswordVar.Get(),
		Neo4jDatabase: neo4jDatabaseVar.Get(),

		MultiTenant: multiTenantVar.Get(),

		RequestTimeout: requestTimeoutVar.Get(),
	}
}
