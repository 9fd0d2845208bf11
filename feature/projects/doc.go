// Package projects implements the portfolio projects feature.
//
// A project carries an ordered image list (image_urls) whose first entry is
// the cover. Every write that touches images goes through core/reconcile:
// new files are uploaded under the "projects/" folder, removed refs are deleted
// from the bucket, and the resulting list is persisted only after all uploads
// succeeded.
//
// # HTTP Endpoints
//
//   - GET    /api/projects       : List projects, newest first.
//   - GET    /api/projects/:id   : Get one project.
//   - POST   /api/projects       : Create (admin). JSON or multipart with "images".
//   - PUT    /api/projects/:id   : Update (admin). Multipart fields "images",
//     "remove_images" and "principal_index" drive the image list.
//   - DELETE /api/projects/:id   : Delete the row, then its images (admin).
package projects
