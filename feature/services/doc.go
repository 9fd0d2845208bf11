// Package services implements the offered-services feature.
//
// Services share the image handling of projects: an ordered image list stored
// under the "services/" folder and kept in sync through core/reconcile.
//
// # HTTP Endpoints
//
//   - GET    /api/services?active=true|false
//   - GET    /api/services/category/:category
//   - GET    /api/services/:id
//   - POST   /api/services        (admin)
//   - PUT    /api/services/:id    (admin)
//   - DELETE /api/services/:id    (admin)
package services
