// Package pg provides PostgreSQL connection plumbing for the durable
// notification store: pool construction with retries, a health check
// closure, and error classification helpers.
//
// Typical wiring:
//
//	cfg := pg.Config{ConnectionString: os.Getenv("PG_CONN_URL")}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    // Handle connection error
//	}
//	defer pool.Close()
//
//	if err := notifications.Migrate(ctx, pool); err != nil {
//	    // Handle migration error
//	}
//	storage, err := notifications.NewPGStorage(pool)
package pg
