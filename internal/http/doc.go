// Package http provides the optional REST adapter for the data API.
//
// Routes mount under /api by default:
//   - Collections: /{collection}, /{collection}/{id}, /{collection}/{id}/versions,
//     /{collection}/versions/{versionID}
//   - Globals: /globals/{slug}, /globals/{slug}/versions, /globals/{slug}/versions/{versionID}
//   - Auth: /users/login
//
// Callers authenticate with HTTP Basic credentials checked against the auth
// collection. Access rules are always evaluated.
package http
