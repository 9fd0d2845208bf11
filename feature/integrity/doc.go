// Package integrity checks that storage and database agree with each other.
//
// # Checks Provided
//
//   - Structure: the image folders (projects/, services/, flipbooks/) exist in the bucket.
//   - Orphans: objects under those folders that no project, service or flipbook references.
//     Purging is refused while any stored image list is malformed.
//   - Schema: every model has its table and columns.
//
// # HTTP Endpoints
//
// All endpoints require an admin token.
//
//   - GET /integrity : Runs all read-only checks.
//   - GET /integrity/structure, POST /integrity/structure/fix
//   - GET /integrity/orphans, POST /integrity/orphans/purge
//   - GET /integrity/schema
package integrity
