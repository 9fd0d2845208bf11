// Package loader mounts features on the router.
//
// A feature is a self-contained slice of the API (its models, service, handler
// and routes) that satisfies Feature. The start command registers every
// feature with a Manager and calls LoadAll on the /api group; features whose
// IsEnabled reports false are skipped, and the first Load error aborts start-up
// with the feature name attached.
//
//	mgr := loader.NewManager(logger)
//	mgr.Register(projects.NewFeature(db, images, adminOnly, logger))
//	if err := mgr.LoadAll(app.Group("/api")); err != nil { ... }
package loader
